package scanner

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"cobolscan/internal/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type positionedEdge struct {
	offset int
	edge   domain.DependencyEdge
}

// extractDependencies scans each paragraph body for PERFORM and CALL
// references. Paragraphs without any are left out.
func extractDependencies(paragraphs *domain.TextBlocks, order EdgeOrder) *domain.EdgeLists {
	deps := orderedmap.New[string, []domain.DependencyEdge]()
	for pair := paragraphs.Oldest(); pair != nil; pair = pair.Next() {
		if edges := edgesIn(pair.Value, order); len(edges) > 0 {
			deps.Set(pair.Key, edges)
		}
	}
	return deps
}

func edgesIn(body string, order EdgeOrder) []domain.DependencyEdge {
	if body == "" {
		return nil
	}

	found := findEdges(performPattern, body, domain.EdgeInvoke)
	found = append(found, findEdges(callPattern, body, domain.EdgeExternalCall)...)
	if len(found) == 0 {
		return nil
	}

	if order == EdgeOrderDocument {
		slices.SortStableFunc(found, func(a, b positionedEdge) int {
			return cmp.Compare(a.offset, b.offset)
		})
	}

	edges := make([]domain.DependencyEdge, len(found))
	for i, f := range found {
		edges[i] = f.edge
	}
	return edges
}

func findEdges(re *regexp.Regexp, body string, kind domain.EdgeKind) []positionedEdge {
	var out []positionedEdge
	for _, idx := range re.FindAllStringSubmatchIndex(body, -1) {
		out = append(out, positionedEdge{
			offset: idx[2],
			edge: domain.DependencyEdge{
				Kind:   kind,
				Target: strings.ToUpper(body[idx[2]:idx[3]]),
			},
		})
	}
	return out
}
