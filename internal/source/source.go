package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fundtrack/transfers/internal/model"
)

// ErrUnknownFormat is returned when no parser matches a requested format.
var ErrUnknownFormat = errors.New("unknown input format")

// Parser converts a transfer ledger into TransferRecords.
type Parser interface {
	Parse(r io.Reader) ([]model.TransferRecord, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForPath returns the parser matching the file extension of path.
func (r *Registry) ForPath(path string) (Parser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if p := r.Get(ext); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, filepath.Base(path))
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&JSONParser{})
	return r
}

// FileSource loads transfer records from files on disk.
type FileSource struct {
	Registry *Registry
	Format   string // empty = by extension
}

// NewFileSource returns a FileSource over the default registry.
func NewFileSource(format string) *FileSource {
	return &FileSource{Registry: DefaultRegistry(), Format: format}
}

// Load parses the file at path.
func (s *FileSource) Load(ctx context.Context, path string) ([]model.TransferRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.parser(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s ledger %s: %w", p.Format(), filepath.Base(path), err)
	}
	return records, nil
}

func (s *FileSource) parser(path string) (Parser, error) {
	if s.Format == "" {
		return s.Registry.ForPath(path)
	}
	if p := s.Registry.Get(s.Format); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, s.Format)
}
