package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/predicate"
)

func TestLoadInput(t *testing.T) {
	loaded, err := LoadInput(testRootOptions("text"), docsFile)
	require.NoError(t, err)

	assert.Equal(t, int32(10), loaded.Options.Arity())
	require.Len(t, loaded.Inputs, 3)
	assert.Equal(t, "adults-in-norway", loaded.Inputs[0].ID)
	assert.Equal(t, "doc-1", loaded.Inputs[2].ID)
	assert.Equal(t, "or(true, a in [1])", loaded.Inputs[2].Predicate.String())
}

func TestLoadInput_DefaultOptions(t *testing.T) {
	opts := testRootOptions("text")
	opts.Options = ""

	loaded, err := LoadInput(opts, docsFile)
	require.NoError(t, err)
	assert.Equal(t, int32(predicate.DefaultArity), loaded.Options.Arity())
}

func TestLoadInput_UUIDv7ByDefault(t *testing.T) {
	loaded, err := LoadInput(&RootOptions{}, docsFile)
	require.NoError(t, err)
	assert.Len(t, loaded.Inputs[2].ID, 36)
}

func TestLoadInput_EmptyNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: empty\npredicate: {}\n"), 0644))

	_, err := LoadInput(testRootOptions("text"), path)
	require.Error(t, err)

	code, message := loadErrorParts(err)
	assert.Equal(t, ErrCodeDecodeFailed, code)
	assert.Contains(t, message, "document empty")
	assert.Contains(t, message, "node is empty")
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "document file not found: x.yaml"}
	assert.Equal(t, "document file not found: x.yaml", err.Error())
}
