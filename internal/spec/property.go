package spec

import (
	"fmt"
	"strings"
)

// PropertyBag is the abstraction-layer interface collaborator step objects
// implement so the core can traverse their runtime properties without
// knowing their concrete shape. Both attribute access and bracket-key
// indexing go through Property.
type PropertyBag interface {
	// Property returns the value stored under the given field name or
	// indexed key, and whether it exists.
	Property(name string) (any, bool)
}

// SegmentKind distinguishes the two accessor forms in a property path.
type SegmentKind int

const (
	// SegmentField is plain attribute access, e.g. `.ModelArtifacts`.
	SegmentField SegmentKind = iota
	// SegmentKey is bracket indexing with a quoted key, e.g. `['data']`.
	SegmentKey
)

// Segment is one accessor in a parsed property path.
type Segment struct {
	Kind SegmentKind
	Name string
}

// PropertyPath is a typed accessor expression: an ordered sequence of field
// and key segments addressing a runtime value on a step object.
type PropertyPath struct {
	segments []Segment
	raw      string
}

// ParsePropertyPath parses the dot-and-bracket grammar used by output
// specifications, e.g.
//
//	properties.ProcessingOutputConfig.Outputs['processed_data'].S3Output.S3Uri
func ParsePropertyPath(raw string) (*PropertyPath, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty property path")
	}

	var segments []Segment
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid property path %q: empty segment", raw)
		}

		field := part
		var keys []string
		if idx := strings.Index(part, "["); idx >= 0 {
			field = part[:idx]
			rest := part[idx:]
			for rest != "" {
				if !strings.HasPrefix(rest, "[") {
					return nil, fmt.Errorf("invalid property path %q: malformed index in segment %q", raw, part)
				}
				end := strings.Index(rest, "]")
				if end < 0 {
					return nil, fmt.Errorf("invalid property path %q: unterminated index in segment %q", raw, part)
				}
				key := rest[1:end]
				key = strings.Trim(key, `'"`)
				if key == "" {
					return nil, fmt.Errorf("invalid property path %q: empty index key in segment %q", raw, part)
				}
				keys = append(keys, key)
				rest = rest[end+1:]
			}
		}

		if field == "" && len(keys) == 0 {
			return nil, fmt.Errorf("invalid property path %q: empty segment", raw)
		}
		if field != "" {
			segments = append(segments, Segment{Kind: SegmentField, Name: field})
		}
		for _, key := range keys {
			segments = append(segments, Segment{Kind: SegmentKey, Name: key})
		}
	}

	return &PropertyPath{segments: segments, raw: raw}, nil
}

// Segments returns the parsed accessor sequence.
func (p *PropertyPath) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// String returns the original path text.
func (p *PropertyPath) String() string {
	return p.raw
}

// Resolve walks the path against a property bag root. Intermediate values
// must themselves be property bags or plain string-keyed maps; the final
// segment may land on any value.
func (p *PropertyPath) Resolve(root PropertyBag) (any, error) {
	if root == nil {
		return nil, fmt.Errorf("property path %q: nil property bag", p.raw)
	}

	var current any = root
	for i, seg := range p.segments {
		var (
			next  any
			found bool
		)
		switch v := current.(type) {
		case PropertyBag:
			next, found = v.Property(seg.Name)
		case map[string]any:
			next, found = v[seg.Name]
		default:
			return nil, fmt.Errorf("property path %q: segment %d (%s) applied to non-traversable value %T", p.raw, i, seg.Name, current)
		}
		if !found {
			return nil, fmt.Errorf("property path %q: segment %d (%s) not present", p.raw, i, seg.Name)
		}
		current = next
	}

	return current, nil
}
