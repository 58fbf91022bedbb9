package compiler

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NameGenerator produces orchestration-service pipeline names. Names must
// be globally unique in the target service, so generated names carry a
// random suffix: same base inputs produce different names run to run.
type NameGenerator struct{}

// GeneratePipelineName builds `<base>-<version>-<suffix>` with an 8
// character random suffix. Base and version are sanitized to the
// service's name alphabet (lowercase alphanumerics and hyphens).
func (NameGenerator) GeneratePipelineName(base, version string) string {
	return fmt.Sprintf("%s-%s-%s", sanitizeNamePart(base), sanitizeNamePart(version), uuid.NewString()[:8])
}

// sanitizeNamePart lowercases and maps every run of disallowed characters
// to a single hyphen.
func sanitizeNamePart(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
