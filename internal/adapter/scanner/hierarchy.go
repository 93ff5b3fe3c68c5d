package scanner

import (
	"fmt"
	"strings"

	"cobolscan/internal/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type hierarchyResult struct {
	sections    *domain.NameLists
	paragraphs  *domain.TextBlocks
	spans       *domain.SpanIndex
	variants    *domain.BodyVariants
	diagnostics []domain.Diagnostic
}

// segmentHierarchy splits lines into sections and paragraphs in one pass.
//
// A paragraph body starts at its "<name>." line and ends before the next
// paragraph or section line. Lines between a section line and the first
// paragraph after it are not part of any paragraph.
func segmentHierarchy(lines []string, policy DuplicatePolicy) hierarchyResult {
	res := hierarchyResult{
		sections:   orderedmap.New[string, []string](),
		paragraphs: orderedmap.New[string, string](),
		spans:      orderedmap.New[string, domain.LineRange](),
	}
	if policy == DuplicatesCollect {
		res.variants = orderedmap.New[string, []string]()
	}

	var (
		section   string
		paragraph string
		startLine int
		buf       []string
		seen      = make(map[string]int)
	)

	// flush records the open paragraph; lastLine is the 1-based line that
	// ends its body.
	flush := func(lastLine int) {
		if paragraph == "" {
			return
		}
		body := strings.Join(buf, "\n")
		res.paragraphs.Set(paragraph, body)
		res.spans.Set(paragraph, domain.LineRange{Start: startLine, End: lastLine})
		if res.variants != nil {
			prev, _ := res.variants.Get(paragraph)
			res.variants.Set(paragraph, append(prev, body))
		}
		paragraph = ""
		buf = nil
	}

	for i, line := range lines {
		if name, ok := matchName(sectionPattern, line); ok {
			flush(i)
			section = name
			res.sections.Set(section, []string{})
		} else if name, ok := matchName(paragraphPattern, line); ok {
			flush(i)
			if first, dup := seen[name]; dup {
				res.diagnostics = append(res.diagnostics, domain.Diagnostic{
					Kind:    domain.DiagDuplicateParagraph,
					Name:    name,
					Line:    i + 1,
					Message: fmt.Sprintf("paragraph %s redeclared, first declared at line %d", name, first),
				})
			} else {
				seen[name] = i + 1
			}

			paragraph = name
			startLine = i + 1
			if _, exists := res.paragraphs.Get(name); !exists {
				res.paragraphs.Set(name, "")
			}
			if section != "" {
				owned, _ := res.sections.Get(section)
				res.sections.Set(section, append(owned, name))
			}
		}

		if paragraph != "" {
			buf = append(buf, line)
		}
	}
	flush(len(lines))

	return res
}
