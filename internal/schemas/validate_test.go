package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	embedded "github.com/jonathan/resume-screener/schemas"
)

func TestValidateEmbedded_Vocabulary_Valid(t *testing.T) {
	err := ValidateEmbedded(embedded.VocabularySchema, `{"technical_skills": ["go", "machine learning"], "soft_skills": []}`)

	assert.NoError(t, err)
}

func TestValidateEmbedded_Vocabulary_MissingField(t *testing.T) {
	err := ValidateEmbedded(embedded.VocabularySchema, `{"technical_skills": ["go"]}`)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "(root)", ve.Errors[0].Field)
	assert.Contains(t, ve.Errors[0].Message, "soft_skills")
}

func TestValidateEmbedded_Vocabulary_BadEntries(t *testing.T) {
	err := ValidateEmbedded(embedded.VocabularySchema, `{"technical_skills": ["", " go"], "soft_skills": [3]}`)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.GreaterOrEqual(t, len(ve.Errors), 3)
}

func TestValidateEmbedded_Vocabulary_UnknownProperty(t *testing.T) {
	err := ValidateEmbedded(embedded.VocabularySchema, `{"technical_skills": [], "soft_skills": [], "tools": []}`)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestValidateEmbedded_MalformedDocument(t *testing.T) {
	err := ValidateEmbedded(embedded.VocabularySchema, `{"technical_skills": [`)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateEmbedded_UnknownSchema(t *testing.T) {
	err := ValidateEmbedded("missing.schema.json", `{}`)

	var le *SchemaLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "missing.schema.json", le.Path)
	assert.NotNil(t, le.Unwrap())
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name": "x"}`))

	err := ValidateJSONString(schema, `{"name": 1}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}

	assert.Equal(t, "validation failed:\n  1. a: bad\n  2. b: worse\n", ve.Error())
}
