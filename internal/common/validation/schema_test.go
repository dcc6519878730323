package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCaseRequest(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		valid         bool
		invalidFields []string
	}{
		{
			name:    "full payload",
			payload: `{"case_id":"TEST-001","case_name":"Doe v. State","issue_area":"civil_rights","opinion_text":"clear evidence","petitioner":"Doe","respondent":"State"}`,
			valid:   true,
		},
		{
			name:    "empty object",
			payload: `{}`,
			valid:   true,
		},
		{
			name:    "null fields",
			payload: `{"case_id":null,"opinion_text":null}`,
			valid:   true,
		},
		{
			name:    "unknown fields tolerated",
			payload: `{"opinion_text":"x","court":"SCOTUS"}`,
			valid:   true,
		},
		{
			name:          "numeric case id",
			payload:       `{"case_id":42}`,
			valid:         false,
			invalidFields: []string{"case_id"},
		},
		{
			name:          "several bad fields",
			payload:       `{"opinion_text":["a"],"issue_area":true}`,
			valid:         false,
			invalidFields: []string{"opinion_text", "issue_area"},
		},
		{
			name:          "array root",
			payload:       `[{"case_id":"x"}]`,
			valid:         false,
			invalidFields: []string{"(root)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateCaseRequest([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			for _, field := range tt.invalidFields {
				assert.True(t, result.HasErrors(field), "expected error on %s, got %v", field, result.GetErrorMessages())
				for _, e := range result.GetErrorsForField(field) {
					assert.Equal(t, "INVALID_TYPE", e.Code)
				}
			}
			if tt.valid {
				assert.Empty(t, result.Errors)
				assert.Empty(t, result.Summary())
			}
		})
	}
}

func TestValidateCaseRequest_NotJSON(t *testing.T) {
	for _, raw := range []string{"", "{", "not json"} {
		_, err := ValidateCaseRequest([]byte(raw))
		assert.Error(t, err, "%q", raw)
	}
}

func TestValidateValue(t *testing.T) {
	schema := MustCompile(CaseRequestSchema)

	result, err := ValidateValue(schema, map[string]interface{}{"case_id": "A", "opinion_text": nil})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateValue(schema, map[string]interface{}{"case_name": 3.5})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Summary(), "case_name")
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`{`) })
}
