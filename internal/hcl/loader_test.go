package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "training.hcl", `
pipeline "fraud_training" {
  step "DataLoad" "load" {}

  step "TabularPreprocessing" "prep" {
    depends_on = ["load"]
  }

  step "XGBoostTraining" "fit" {
    config     = "xgb_fit"
    depends_on = ["prep"]
  }

  parameters {
    max_depth = 6
    objective = "binary:logistic"
  }
}
`)

	defs, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "fraud_training", def.Name)
	assert.Equal(t, []string{"load", "prep", "fit"}, def.Graph.Nodes())

	preds, err := def.Graph.Predecessors("fit")
	require.NoError(t, err)
	assert.Equal(t, []string{"prep"}, preds)

	assert.Equal(t, "XGBoostTraining", def.DeclaredTypes["fit"])
	assert.Equal(t, map[string]string{"fit": "xgb_fit"}, def.ConfigBindings)

	// Parameter values are evaluated and normalized to strings.
	assert.Equal(t, "6", def.Parameters["max_depth"])
	assert.Equal(t, "binary:logistic", def.Parameters["objective"])
}

func TestLoaderMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `
pipeline "first" {
  step "DataLoad" "load" {}
}
`)
	writeFile(t, dir, "b.hcl", `
pipeline "second" {
  step "DataLoad" "load" {}
}
`)

	defs, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	// Files are discovered in sorted order.
	assert.Equal(t, "first", defs[0].Name)
	assert.Equal(t, "second", defs[1].Name)
}

func TestLoaderErrors(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "unknown dependency reference",
			content: `
pipeline "p" {
  step "XGBoostTraining" "fit" {
    depends_on = ["ghost"]
  }
}
`,
			wantErr: "edge source node not in DAG",
		},
		{
			name: "duplicate step name",
			content: `
pipeline "p" {
  step "DataLoad" "load" {}
  step "DataLoad" "load" {}
}
`,
			wantErr: "duplicate step 'load'",
		},
		{
			name:    "empty pipeline",
			content: `pipeline "p" {}`,
			wantErr: "declares no steps",
		},
		{
			name: "self dependency",
			content: `
pipeline "p" {
  step "DataLoad" "load" {
    depends_on = ["load"]
  }
}
`,
			wantErr: "self-referential edge",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "p.hcl", tc.content)

			_, err := NewLoader().Load(ctx, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoaderMissingPathSkipped(t *testing.T) {
	defs, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, defs)
}
