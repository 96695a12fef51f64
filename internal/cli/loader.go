package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/predc/internal/compiler"
	"github.com/roach88/predc/internal/config"
	"github.com/roach88/predc/internal/document"
	"github.com/roach88/predc/internal/predicate"
)

// LoadError represents an error loading documents or options.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // options file position, if any
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadResult contains the decoded input of a command.
type LoadResult struct {
	Options *predicate.Options
	Inputs  []compiler.Input
}

// CLI error codes
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Path not found
	ErrCodeDecodeFailed  = "E003" // Document file cannot be decoded
	ErrCodeOptions       = "E004" // Options file invalid
	ErrCodeCompileFailed = "E005" // Pipeline rejected a document
	ErrCodeWriteFailed   = "E006" // File write error
	ErrCodeInvalid       = "E007" // Validation found problems
	ErrCodeTestFailed    = "E008" // Scenario failures
)

// LoadInput reads the options file named by opts and the documents at
// path, converting every document into a compiler input.
func LoadInput(opts *RootOptions, path string) (*LoadResult, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing document file: %v", err)}
	}

	options, err := loadOptions(opts.Options)
	if err != nil {
		return nil, err
	}

	var readerOpts []document.ReaderOption
	if opts.IDGenerator != nil {
		readerOpts = append(readerOpts, document.WithIDGenerator(opts.IDGenerator))
	}
	docs, err := document.NewReader(readerOpts...).Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
	}

	inputs := make([]compiler.Input, len(docs))
	for i, doc := range docs {
		tree, err := doc.Tree()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
		}
		inputs[i] = compiler.Input{ID: doc.ID, Predicate: tree}
	}
	return &LoadResult{Options: options, Inputs: inputs}, nil
}

func loadOptions(path string) (*predicate.Options, error) {
	if path == "" {
		return predicate.DefaultOptions(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("options file not found: %s", path)}
	}
	options, err := config.Load(path)
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			return nil, &LoadError{Code: ErrCodeOptions, Message: cfgErr.Message, Pos: cfgErr.Pos}
		}
		return nil, &LoadError{Code: ErrCodeOptions, Message: err.Error()}
	}
	return options, nil
}

// loadErrorParts extracts the code and message of a LoadInput error.
func loadErrorParts(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Error()
	}
	return ErrCodeGeneric, err.Error()
}
