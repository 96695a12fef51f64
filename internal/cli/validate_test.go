package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/compiler"
	"github.com/roach88/predc/internal/testutil"
)

func TestValidateValidDocuments(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(testRootOptions("text")), docsFile)
	require.NoError(t, err)
	assert.Equal(t, "✓ 3 document(s) valid\n", out)
}

func TestValidateValidDocumentsJSON(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(testRootOptions("json")), docsFile)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Documents)
}

func TestValidateInvalidDocumentsText(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(testRootOptions("text")), invalidFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 3 error(s)")
	testutil.AssertGolden(t, "validate_text", []byte(out))
}

func TestValidateInvalidDocumentsJSON(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(testRootOptions("json")), invalidFile)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)

	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)
	assert.Equal(t, DocumentValidationError{
		Document: "inverted",
		ValidationError: compiler.ValidationError{
			Path:    "$.and[0]",
			Message: `range "age" from 65 exceeds to 18`,
			Code:    compiler.ErrInvertedRange,
		},
	}, resp.Data.Errors[0])
	assert.Equal(t, compiler.ErrDuplicateConjunctOp, resp.Data.Errors[1].Code)
	assert.Equal(t, compiler.ErrInvalidConjunctOp, resp.Data.Errors[2].Code)
}

func TestValidateDecodeError(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(testRootOptions("text")), "testdata/malformed.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}
