package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/compiler"
	"github.com/roach88/predc/internal/testutil"
)

func TestExplainText(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand(testRootOptions("text")), docsFile)
	require.NoError(t, err)
	testutil.AssertGolden(t, "explain_text", []byte(out))
}

func TestExplainJSON(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand(testRootOptions("json")), docsFile)
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   []ExplainedDocument `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)

	full := resp.Data[1]
	require.Len(t, full.Stages, 5)
	assert.Equal(t, compiler.StageAndOr, full.Stages[0].Stage)
	assert.Equal(t, compiler.StageNotReorder, full.Stages[4].Stage)
	assert.Equal(t, "or(country in [se], not(hobby in [gaming]))", full.Stages[4].Tree)
	assert.Equal(t, 1, full.Result.MinFeature)

	folded := resp.Data[2]
	require.Len(t, folded.Stages, 2)
	assert.Equal(t, compiler.StageBooleans, folded.Stages[1].Stage)
	require.NotNil(t, folded.Result.Constant)
	assert.True(t, *folded.Result.Constant)
}

func TestExplainRejectedDocument(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand(testRootOptions("text")), invalidFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "document inverted")
}

func TestExplainMissingFile(t *testing.T) {
	_, _, err := execute(t, NewExplainCommand(testRootOptions("text")), "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
