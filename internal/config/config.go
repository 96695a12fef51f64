// Package config loads compile options from CUE files.
//
// An options file is plain CUE (or JSON) checked against a closed schema:
//
//	arity:       8      // optional, 2..65536, default 8
//	lower_bound: -1000  // optional
//	upper_bound: 1000   // optional
package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/predc/internal/predicate"
)

// Schema is the CUE definition options files are unified with.
const Schema = `
#Options: {
	arity:        int & >=2 & <=65536 | *8
	lower_bound?: int & >=-9223372036854775808 & <=9223372036854775807
	upper_bound?: int & >=-9223372036854775808 & <=9223372036854775807
}
`

// File is the decoded form of an options file.
type File struct {
	Arity      int    `json:"arity" yaml:"arity,omitempty"`
	LowerBound *int64 `json:"lower_bound,omitempty" yaml:"lower_bound,omitempty"`
	UpperBound *int64 `json:"upper_bound,omitempty" yaml:"upper_bound,omitempty"`
}

// Options builds predicate.Options from the file. A zero Arity means
// predicate.DefaultArity.
func (f File) Options() (*predicate.Options, error) {
	arity := f.Arity
	if arity == 0 {
		arity = predicate.DefaultArity
	}
	var opts []predicate.Option
	if f.LowerBound != nil {
		opts = append(opts, predicate.WithLowerBound(*f.LowerBound))
	}
	if f.UpperBound != nil {
		opts = append(opts, predicate.WithUpperBound(*f.UpperBound))
	}
	return predicate.NewOptions(arity, opts...)
}

// Error is an options file error with source position.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and validates an options file.
func Load(path string) (*predicate.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates CUE source against Schema and builds the options.
// filename is used in error positions only.
func Parse(data []byte, filename string) (*predicate.Options, error) {
	f, err := Decode(data, filename)
	if err != nil {
		return nil, err
	}
	opts, err := f.Options()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return opts, nil
}

// Decode validates CUE source against Schema without building options.
func Decode(data []byte, filename string) (File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(Schema).LookupPath(cue.ParsePath("#Options"))
	if err := schema.Err(); err != nil {
		return File{}, fmt.Errorf("options schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return File{}, formatCUEError(err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return File{}, formatCUEError(err)
	}

	var f File
	if err := unified.Decode(&f); err != nil {
		return File{}, formatCUEError(err)
	}
	return f, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{Message: first.Error(), Pos: positions[0]}
	}
	return &Error{Message: first.Error()}
}
