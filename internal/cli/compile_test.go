package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/annotator"
	"github.com/roach88/predc/internal/predicate"
	"github.com/roach88/predc/internal/testutil"
)

var (
	docsFile    = filepath.Join("testdata", "docs.yaml")
	invalidFile = filepath.Join("testdata", "invalid.yaml")
	optionsFile = filepath.Join("testdata", "options.cue")
)

// testRootOptions returns options with decimal partitions and
// deterministic ids for documents that have none.
func testRootOptions(format string) *RootOptions {
	return &RootOptions{
		Format:      format,
		Options:     optionsFile,
		IDGenerator: testutil.NewSequenceIDGenerator(""),
	}
}

// execute runs a subcommand and returns its stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type compileResponse struct {
	Status string             `json:"status"`
	Data   []CompiledDocument `json:"data"`
	Error  *CLIError          `json:"error"`
}

func TestCompileText(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(testRootOptions("text")), docsFile)
	require.NoError(t, err)
	testutil.AssertGolden(t, "compile_text", []byte(out))
}

func TestCompileJSON(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(testRootOptions("json")), docsFile)
	require.NoError(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 3)

	adults := resp.Data[0]
	assert.Equal(t, "adults-in-norway", adults.ID)
	assert.Nil(t, adults.Constant)
	assert.Equal(t, 2, adults.MinFeature)
	assert.Equal(t, uint32(2), adults.IntervalEnd)
	edge := findFeatureByLabel(t, adults.Features, "age=10")
	require.Len(t, edge.Bounds, 1)
	low, high, ok := predicate.DecodeBounds(edge.Bounds[0].Bounds)
	require.True(t, ok)
	assert.Equal(t, [2]int32{8, 9}, [2]int32{low, high})

	gamers := resp.Data[1]
	assert.Equal(t, "or(country in [se], not(hobby in [gaming]))", gamers.Tree)
	zstar := findFeatureByLabel(t, gamers.Features, annotator.ZStarCompressedAttributeName)
	assert.Equal(t, []uint32{0x00020000}, zstar.Intervals)

	constant := resp.Data[2]
	assert.Equal(t, "doc-1", constant.ID)
	require.NotNil(t, constant.Constant)
	assert.True(t, *constant.Constant)
	assert.Empty(t, constant.Tree)
	assert.Empty(t, constant.Features)
}

func TestCompileWorkersKeepOrder(t *testing.T) {
	opts := testRootOptions("text")
	opts.Workers = 1
	serial, _, err := execute(t, NewCompileCommand(opts), docsFile)
	require.NoError(t, err)

	opts = testRootOptions("text")
	opts.Workers = 8
	parallel, _, err := execute(t, NewCompileCommand(opts), docsFile)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "annotations.json")

	out, _, err := execute(t, NewCompileCommand(testRootOptions("text")), docsFile, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote annotations to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	var docs []CompiledDocument
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 3)
	assert.Equal(t, "not-gamers", docs[1].ID)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		options  string
		path     string
		wantCode string
		wantMsg  string
		wantExit int
	}{
		{
			name:     "missing document file",
			path:     filepath.Join("testdata", "nope.yaml"),
			wantCode: ErrCodeNotFound,
			wantMsg:  "document file not found",
			wantExit: ExitCommandError,
		},
		{
			name:     "unknown field",
			path:     filepath.Join("testdata", "malformed.yaml"),
			wantCode: ErrCodeDecodeFailed,
			wantMsg:  "values",
			wantExit: ExitCommandError,
		},
		{
			name:     "missing options file",
			options:  filepath.Join("testdata", "nope.cue"),
			path:     docsFile,
			wantCode: ErrCodeNotFound,
			wantMsg:  "options file not found",
			wantExit: ExitCommandError,
		},
		{
			name:     "options out of range",
			options:  filepath.Join("testdata", "bad_options.cue"),
			path:     docsFile,
			wantCode: ErrCodeOptions,
			wantMsg:  "arity",
			wantExit: ExitCommandError,
		},
		{
			name:     "document rejected by the pipeline",
			path:     invalidFile,
			wantCode: ErrCodeCompileFailed,
			wantMsg:  "document inverted",
			wantExit: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testRootOptions("json")
			if tt.options != "" {
				opts.Options = tt.options
			}

			out, _, err := execute(t, NewCompileCommand(opts), tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			var resp compileResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMsg)
		})
	}
}

func TestCompileRejectedDocumentText(t *testing.T) {
	out, _, err := execute(t, NewCompileCommand(testRootOptions("text")), invalidFile)
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "MALFORMED_RANGE")
	assert.Contains(t, err.Error(), "compilation failed")
}

func TestCompileVerboseLogsToStderr(t *testing.T) {
	opts := testRootOptions("json")
	opts.Verbose = true

	out, errOut, err := execute(t, NewCompileCommand(opts), docsFile)
	require.NoError(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "stdout must stay valid JSON")
	assert.Contains(t, errOut, "Loaded 3 document(s)")
	assert.Contains(t, errOut, "stage complete")
	assert.Contains(t, errOut, "batch compiled")
}

func findFeatureByLabel(t *testing.T, features []annotator.Feature, label string) annotator.Feature {
	t.Helper()
	for _, f := range features {
		if f.Label == label {
			return f
		}
	}
	require.Failf(t, "feature not found", "no feature labeled %q", label)
	return annotator.Feature{}
}
