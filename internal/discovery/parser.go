package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is a declarative spec source. Prelude is evaluated once before
// any example body compiles; Entries are the top-level groups.
type Document struct {
	Prelude string  `yaml:"prelude"`
	Entries []Entry `yaml:"groups"`
}

// Entry is one node of a declarative source: a group when Describe is set,
// an example when It is set.
type Entry struct {
	Describe string  `yaml:"describe"`
	It       string  `yaml:"it"`
	Body     string  `yaml:"body"`
	Timeout  string  `yaml:"timeout"`
	Children []Entry `yaml:"children"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line an entry starts on.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	type plain Entry
	if err := node.Decode((*plain)(e)); err != nil {
		return err
	}
	e.Line = node.Line
	return nil
}

// IsGroup reports whether the entry declares a group.
func (e *Entry) IsGroup() bool {
	return e.Describe != ""
}

// TimeoutDuration parses the entry's timeout; empty means zero.
func (e *Entry) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(e.Timeout)
}

// Parser reads declarative spec sources
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and validates the document at path.
func (p *Parser) ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	doc, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document. Unknown top-level fields are rejected, and each entry
// must be exactly one of a group or an example.
func (p *Parser) Parse(content []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i := range doc.Entries {
		if err := validate(&doc.Entries[i]); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func validate(e *Entry) error {
	switch {
	case e.Describe != "" && e.It != "":
		return fmt.Errorf("line %d: entry has both describe and it", e.Line)
	case e.Describe == "" && e.It == "":
		return fmt.Errorf("line %d: entry needs describe or it", e.Line)
	case e.IsGroup() && (e.Body != "" || e.Timeout != ""):
		return fmt.Errorf("line %d: group %q cannot have a body or timeout", e.Line, e.Describe)
	case !e.IsGroup() && len(e.Children) > 0:
		return fmt.Errorf("line %d: example %q cannot have children", e.Line, e.It)
	case !e.IsGroup() && e.Body == "":
		return fmt.Errorf("line %d: example %q has no body", e.Line, e.It)
	}
	if d, err := e.TimeoutDuration(); err != nil || d < 0 {
		return fmt.Errorf("line %d: invalid timeout %q", e.Line, e.Timeout)
	}
	for i := range e.Children {
		if err := validate(&e.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
