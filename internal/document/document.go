package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/predc/internal/predicate"
)

// Document is a stored document's predicate.
type Document struct {
	ID        string `yaml:"id,omitempty" json:"id,omitempty"`
	Predicate Node   `yaml:"predicate" json:"predicate"`
}

// Tree converts the document's predicate node.
func (d Document) Tree() (predicate.Predicate, error) {
	p, err := d.Predicate.Predicate()
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", d.ID, err)
	}
	return p, nil
}

// Batch is a file holding several documents.
type Batch struct {
	Documents []Document `yaml:"documents" json:"documents"`
}

// file is either a single Document or a Batch.
type file struct {
	ID        string     `yaml:"id"`
	Predicate *Node      `yaml:"predicate"`
	Documents []Document `yaml:"documents"`
}

// Reader decodes documents.
type Reader struct {
	ids IDGenerator
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithIDGenerator sets the generator for missing document ids.
//
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) ReaderOption {
	return func(r *Reader) {
		r.ids = g
	}
}

// NewReader creates a Reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Decode reads every document in the stream, rejecting unknown fields.
func (r *Reader) Decode(in io.Reader) ([]Document, error) {
	decoder := yaml.NewDecoder(in)
	decoder.KnownFields(true) // Reject unknown fields

	var docs []Document
	for i := 0; ; i++ {
		var f file
		err := decoder.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %d: %w", i, err)
		}

		switch {
		case f.Predicate != nil && f.Documents == nil:
			docs = append(docs, Document{ID: f.ID, Predicate: *f.Predicate})
		case f.Predicate == nil && f.Documents != nil && f.ID == "":
			docs = append(docs, f.Documents...)
		default:
			return nil, fmt.Errorf("YAML document %d: expected either predicate or documents", i)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found")
	}

	seen := make(map[string]bool, len(docs))
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = r.ids.Generate()
		}
		if seen[docs[i].ID] {
			return nil, fmt.Errorf("duplicate document id %q", docs[i].ID)
		}
		seen[docs[i].ID] = true
	}
	return docs, nil
}

// Load reads and decodes a document file.
func (r *Reader) Load(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return r.Decode(bytes.NewReader(data))
}

// Encode writes docs as a batch.
func Encode(w io.Writer, docs []Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Batch{Documents: docs}); err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}
	return enc.Close()
}
