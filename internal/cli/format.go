package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cobolscan/internal/domain"
)

var facetNames = []string{
	"divisions", "sections", "paragraphs", "copybooks",
	"dependencies", "file_operations", "spans", "diagnostics",
}

// facetValue returns the named facet of m for JSON output.
func facetValue(m *domain.Model, facet string) (any, error) {
	switch facet {
	case "":
		return m, nil
	case "divisions":
		return m.Divisions, nil
	case "sections":
		return m.Sections, nil
	case "paragraphs":
		return m.Paragraphs, nil
	case "copybooks":
		return m.Copybooks, nil
	case "dependencies":
		return m.Dependencies, nil
	case "file_operations":
		return m.FileOperations, nil
	case "spans":
		return m.Spans, nil
	case "diagnostics":
		return m.Diagnostics, nil
	default:
		return nil, fmt.Errorf("unknown facet %q (one of %s)", facet, strings.Join(facetNames, ", "))
	}
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// writeModel prints a human-readable outline of m, or one facet of it.
func writeModel(w io.Writer, m *domain.Model, facet string) error {
	if _, err := facetValue(m, facet); err != nil {
		return err
	}
	show := func(name string) bool { return facet == "" || facet == name }

	if show("divisions") {
		fmt.Fprintf(w, "Divisions (%d):\n", m.Divisions.Len())
		for pair := m.Divisions.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(w, "  %s (%d lines)\n", pair.Key, strings.Count(pair.Value, "\n")+1)
		}
	}
	if show("sections") {
		fmt.Fprintf(w, "Sections (%d):\n", m.Sections.Len())
		for pair := m.Sections.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(w, "  %s: %s\n", pair.Key, strings.Join(pair.Value, ", "))
		}
	}
	if show("paragraphs") || show("spans") {
		fmt.Fprintf(w, "Paragraphs (%d):\n", m.Paragraphs.Len())
		for pair := m.Paragraphs.Oldest(); pair != nil; pair = pair.Next() {
			if span, ok := m.Spans.Get(pair.Key); ok {
				fmt.Fprintf(w, "  %s  L%d-%d\n", pair.Key, span.Start, span.End)
			} else {
				fmt.Fprintf(w, "  %s\n", pair.Key)
			}
		}
	}
	if show("copybooks") {
		fmt.Fprintf(w, "Copybooks (%d): %s\n", len(m.Copybooks), strings.Join(m.Copybooks, ", "))
	}
	if show("dependencies") {
		fmt.Fprintf(w, "Dependencies (%d):\n", m.EdgeCount())
		for pair := m.Dependencies.Oldest(); pair != nil; pair = pair.Next() {
			for _, e := range pair.Value {
				fmt.Fprintf(w, "  %s -[%s]-> %s\n", pair.Key, e.Kind, e.Target)
			}
		}
	}
	if show("file_operations") {
		fmt.Fprintln(w, "File operations:")
		for pair := m.FileOperations.Oldest(); pair != nil; pair = pair.Next() {
			for _, op := range pair.Value {
				fmt.Fprintf(w, "  %s: %s %s\n", pair.Key, op.Operation, op.Target)
			}
		}
	}
	if show("diagnostics") && len(m.Diagnostics) > 0 {
		fmt.Fprintf(w, "Diagnostics (%d):\n", len(m.Diagnostics))
		for _, d := range m.Diagnostics {
			fmt.Fprintf(w, "  line %d: %s\n", d.Line, d.Message)
		}
	}
	return nil
}
