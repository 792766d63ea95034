package workflow

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"lead-pipeline/internal/apollo"
	errs "lead-pipeline/internal/common/errors"
	"lead-pipeline/internal/common/validation"
)

const (
	DefaultMaxResults = 25
	maxPerPage        = apollo.MaxPerPage
)

// Spec describes one workflow run. Every optional field is listed; the zero
// value of each means the corresponding behavior is skipped or defaulted.
type Spec struct {
	Filters apollo.PeopleSearchFilters `json:"filters" mapstructure:"filters"`
	// Enrich turns on the bulk-match stage.
	Enrich               bool `json:"enrich" mapstructure:"enrich"`
	RevealPersonalEmails bool `json:"revealPersonalEmails" mapstructure:"reveal_personal_emails"`
	// LabelNames are attached to every created contact; empty sends none.
	LabelNames []string `json:"labelNames,omitempty" mapstructure:"label_names"`
	// SequenceID and EmailAccountID must both be set for enrollment to run.
	SequenceID     string `json:"sequenceId,omitempty" mapstructure:"sequence_id"`
	EmailAccountID string `json:"emailAccountId,omitempty" mapstructure:"email_account_id"`
	// MaxResults <= 0 falls back to the orchestrator default.
	MaxResults int `json:"maxResults,omitempty" mapstructure:"max_results"`
}

// EnrollsInSequence reports whether the run asks for sequence enrollment.
func (s Spec) EnrollsInSequence() bool {
	return strings.TrimSpace(s.SequenceID) != "" && strings.TrimSpace(s.EmailAccountID) != ""
}

// PerPage is the page size of the single search call.
func (s Spec) PerPage(defaultMax int) int {
	n := s.MaxResults
	if n <= 0 {
		n = defaultMax
	}
	if n <= 0 {
		n = DefaultMaxResults
	}
	return min(n, maxPerPage)
}

const specSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"filters": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"person_titles": {"type": "array", "items": {"type": "string"}},
				"include_similar_titles": {"type": "boolean"},
				"person_locations": {"type": "array", "items": {"type": "string"}},
				"person_seniorities": {"type": "array", "items": {"type": "string"}},
				"organization_locations": {"type": "array", "items": {"type": "string"}},
				"organization_domains": {"type": "array", "items": {"type": "string"}},
				"employee_ranges": {"type": "array", "items": {"type": "string", "pattern": "^[0-9]+,[0-9]+$"}},
				"contact_email_status": {"type": "array", "items": {"type": "string"}},
				"keywords": {"type": "string"}
			}
		},
		"enrich": {"type": "boolean"},
		"reveal_personal_emails": {"type": "boolean"},
		"label_names": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"sequence_id": {"type": "string", "minLength": 1},
		"email_account_id": {"type": "string", "minLength": 1},
		"max_results": {"type": "integer", "minimum": 1}
	},
	"dependencies": {
		"sequence_id": ["email_account_id"],
		"email_account_id": ["sequence_id"]
	}
}`

var specValidator = validation.MustCompileSchema(specSchema)

// LoadSpec reads a YAML or JSON run-spec file and validates it before decoding.
func LoadSpec(path string) (Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return Spec{}, fmt.Errorf("read run spec %s: %w", path, err)
	}
	return decodeSpec(v)
}

func decodeSpec(v *viper.Viper) (Spec, error) {
	res, err := specValidator.ValidateDocument(v.AllSettings())
	if err != nil {
		return Spec{}, err
	}
	if !res.Valid {
		return Spec{}, errs.NewValidationError(errs.ErrCodeInvalidInput, "invalid run spec", res.Error())
	}

	var spec Spec
	if err := v.Unmarshal(&spec); err != nil {
		return Spec{}, fmt.Errorf("decode run spec: %w", err)
	}
	return spec, nil
}
