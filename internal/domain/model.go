package domain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type EdgeKind string

const (
	EdgeInvoke       EdgeKind = "INVOKE"
	EdgeExternalCall EdgeKind = "EXTERNAL_CALL"
)

type OpKind string

const (
	OpOpen  OpKind = "OPEN"
	OpRead  OpKind = "READ"
	OpWrite OpKind = "WRITE"
	OpClose OpKind = "CLOSE"
)

// DependencyEdge is a PERFORM or CALL reference found in a paragraph body.
type DependencyEdge struct {
	Kind   EdgeKind `json:"kind"`
	Target string   `json:"target"`
}

// ResourceOperation is an OPEN/READ/WRITE/CLOSE against a named file.
type ResourceOperation struct {
	Operation OpKind `json:"operation"`
	Target    string `json:"target"`
}

// LineRange is a 1-based inclusive range of source lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type DiagnosticKind string

const (
	DiagDuplicateDivision  DiagnosticKind = "duplicate_division"
	DiagDuplicateParagraph DiagnosticKind = "duplicate_paragraph"
)

// Diagnostic is a recoverable condition noticed during a scan.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Name    string         `json:"name"`
	Line    int            `json:"line"`
	Message string         `json:"message"`
}

// Ordered name-keyed facets. Keys keep the position of their first insertion.
type (
	TextBlocks   = orderedmap.OrderedMap[string, string]
	NameLists    = orderedmap.OrderedMap[string, []string]
	EdgeLists    = orderedmap.OrderedMap[string, []DependencyEdge]
	OpLists      = orderedmap.OrderedMap[string, []ResourceOperation]
	SpanIndex    = orderedmap.OrderedMap[string, LineRange]
	BodyVariants = orderedmap.OrderedMap[string, []string]
)

// Variants holds every body seen per name when duplicates are collected
// instead of overwritten.
type Variants struct {
	Divisions  *BodyVariants `json:"divisions"`
	Paragraphs *BodyVariants `json:"paragraphs"`
}

// Model is the result of one scan. It is not modified after Scan returns.
type Model struct {
	Divisions      *TextBlocks `json:"divisions"`
	Sections       *NameLists  `json:"sections"`
	Paragraphs     *TextBlocks `json:"paragraphs"`
	Copybooks      []string    `json:"copybooks"`
	Dependencies   *EdgeLists  `json:"dependencies"`
	FileOperations *OpLists    `json:"file_operations"`

	Spans       *SpanIndex   `json:"spans,omitempty"`
	Variants    *Variants    `json:"variants,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NewModel returns a model with every facet empty but non-nil.
func NewModel() *Model {
	return &Model{
		Divisions:      orderedmap.New[string, string](),
		Sections:       orderedmap.New[string, []string](),
		Paragraphs:     orderedmap.New[string, string](),
		Copybooks:      []string{},
		Dependencies:   orderedmap.New[string, []DependencyEdge](),
		FileOperations: orderedmap.New[string, []ResourceOperation](),
		Spans:          orderedmap.New[string, LineRange](),
	}
}

// IsEmpty reports whether all six facets are empty.
func (m *Model) IsEmpty() bool {
	return m.Divisions.Len() == 0 &&
		m.Sections.Len() == 0 &&
		m.Paragraphs.Len() == 0 &&
		len(m.Copybooks) == 0 &&
		m.Dependencies.Len() == 0 &&
		m.FileOperations.Len() == 0
}

// ParagraphNames returns paragraph names in source order.
func (m *Model) ParagraphNames() []string {
	names := make([]string, 0, m.Paragraphs.Len())
	for pair := m.Paragraphs.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// EdgesOf returns the dependency edges recorded for a paragraph.
func (m *Model) EdgesOf(paragraph string) []DependencyEdge {
	edges, _ := m.Dependencies.Get(paragraph)
	return edges
}

// OperationsOf returns the resource operations recorded for a paragraph.
func (m *Model) OperationsOf(paragraph string) []ResourceOperation {
	ops, _ := m.FileOperations.Get(paragraph)
	return ops
}

// SectionOf returns the section that declared the paragraph, if any.
func (m *Model) SectionOf(paragraph string) (string, bool) {
	for pair := m.Sections.Oldest(); pair != nil; pair = pair.Next() {
		for _, p := range pair.Value {
			if p == paragraph {
				return pair.Key, true
			}
		}
	}
	return "", false
}

// EdgeCount returns the total number of dependency edges.
func (m *Model) EdgeCount() int {
	n := 0
	for pair := m.Dependencies.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value)
	}
	return n
}
