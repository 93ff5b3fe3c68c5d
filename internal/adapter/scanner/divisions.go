package scanner

import (
	"fmt"
	"strings"

	"cobolscan/internal/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type divisionResult struct {
	divisions   *domain.TextBlocks
	variants    *domain.BodyVariants
	diagnostics []domain.Diagnostic
}

// segmentDivisions splits lines into divisions. A division runs from its
// "<name> DIVISION." line up to the next such line or the end of input.
// Lines before the first division belong to nothing.
func segmentDivisions(lines []string, policy DuplicatePolicy) divisionResult {
	res := divisionResult{divisions: orderedmap.New[string, string]()}
	if policy == DuplicatesCollect {
		res.variants = orderedmap.New[string, []string]()
	}

	var (
		current string
		buf     []string
		seen    = make(map[string]int)
	)

	flush := func() {
		if current == "" {
			return
		}
		body := strings.Join(buf, "\n")
		res.divisions.Set(current, body)
		if res.variants != nil {
			prev, _ := res.variants.Get(current)
			res.variants.Set(current, append(prev, body))
		}
	}

	for i, line := range lines {
		name, ok := matchName(divisionPattern, line)
		if !ok {
			if current != "" {
				buf = append(buf, line)
			}
			continue
		}

		flush()
		if first, dup := seen[name]; dup {
			res.diagnostics = append(res.diagnostics, domain.Diagnostic{
				Kind:    domain.DiagDuplicateDivision,
				Name:    name,
				Line:    i + 1,
				Message: fmt.Sprintf("division %s redeclared, first declared at line %d", name, first),
			})
		} else {
			seen[name] = i + 1
		}
		current = name
		buf = []string{line}
	}
	flush()

	return res
}
