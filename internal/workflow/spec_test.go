package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "lead-pipeline/internal/common/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSpec_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
filters:
  person_titles: [CTO, VP Engineering]
  person_locations: [Berlin]
  include_similar_titles: false
  employee_ranges: ["1,50"]
enrich: true
reveal_personal_emails: true
label_names: [Q1 outbound]
sequence_id: seq-1
email_account_id: acct-1
max_results: 40
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"CTO", "VP Engineering"}, spec.Filters.PersonTitles)
	assert.Equal(t, []string{"Berlin"}, spec.Filters.PersonLocations)
	assert.Equal(t, []string{"1,50"}, spec.Filters.EmployeeRanges)
	require.NotNil(t, spec.Filters.IncludeSimilarTitles)
	assert.False(t, *spec.Filters.IncludeSimilarTitles)
	assert.True(t, spec.Enrich)
	assert.True(t, spec.RevealPersonalEmails)
	assert.Equal(t, []string{"Q1 outbound"}, spec.LabelNames)
	assert.True(t, spec.EnrollsInSequence())
	assert.Equal(t, 40, spec.MaxResults)
	assert.Equal(t, 40, spec.PerPage(25))
}

func TestLoadSpec_JSON(t *testing.T) {
	path := writeFile(t, "run.json", `{"filters": {"keywords": "fintech"}, "max_results": 500}`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "fintech", spec.Filters.Keywords)
	assert.Equal(t, 100, spec.PerPage(25))
	assert.False(t, spec.EnrollsInSequence())
}

func TestLoadSpec_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "surprise: true\n"},
		{name: "wrong type", content: "enrich: sometimes\n"},
		{name: "zero max results", content: "max_results: 0\n"},
		{name: "sequence without account", content: "sequence_id: s1\n"},
		{name: "bad employee range", content: "filters:\n  employee_ranges: [\"lots\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSpec(writeFile(t, "run.yaml", tt.content))
			require.Error(t, err)
			assert.True(t, errs.IsValidationError(err), "got %v", err)
		})
	}
}

func TestLoadSpec_MissingFile(t *testing.T) {
	_, err := LoadSpec(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSpecPerPage(t *testing.T) {
	assert.Equal(t, 25, Spec{}.PerPage(0))
	assert.Equal(t, 10, Spec{}.PerPage(10))
	assert.Equal(t, 7, Spec{MaxResults: 7}.PerPage(10))
	assert.Equal(t, 100, Spec{MaxResults: 101}.PerPage(10))
}
