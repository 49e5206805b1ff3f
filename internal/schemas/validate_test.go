package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name", "price"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"price": {"type": "number", "minimum": 0}
	}
}`

func TestValidate(t *testing.T) {
	t.Run("conforming document", func(t *testing.T) {
		err := Validate(testSchema, `{"name": "bocina", "price": 2500}`)
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := Validate(testSchema, `{"name": "bocina"}`)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		require.Len(t, ve.Errors, 1)
		assert.Contains(t, ve.Errors[0].Message, "price")
	})

	t.Run("multiple violations reported together", func(t *testing.T) {
		err := Validate(testSchema, `{"name": "", "price": -5}`)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Errors, 2)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := Validate(testSchema, `{"name": "bocina", "price": "free"}`)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "price", ve.Errors[0].Field)
	})

	t.Run("document is not JSON", func(t *testing.T) {
		err := Validate(testSchema, "not json at all")

		require.Error(t, err)
		var ve *ValidationError
		assert.False(t, errors.As(err, &ve))
	})
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{
		{Field: "price", Message: "price is required"},
		{Field: "name", Message: "String length must be greater than or equal to 1"},
	}}
	msg := ve.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "price is required")
	assert.Contains(t, msg, "name")
}
