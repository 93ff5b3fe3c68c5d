package scanner

import (
	"strings"

	"cobolscan/internal/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// extractFileOperations scans each paragraph body for OPEN, READ, WRITE and
// CLOSE statements, in document order.
func extractFileOperations(paragraphs *domain.TextBlocks) *domain.OpLists {
	ops := orderedmap.New[string, []domain.ResourceOperation]()
	for pair := paragraphs.Oldest(); pair != nil; pair = pair.Next() {
		if found := operationsIn(pair.Value); len(found) > 0 {
			ops.Set(pair.Key, found)
		}
	}
	return ops
}

func operationsIn(body string) []domain.ResourceOperation {
	if body == "" {
		return nil
	}
	var found []domain.ResourceOperation
	for _, m := range fileOpPattern.FindAllStringSubmatch(body, -1) {
		found = append(found, domain.ResourceOperation{
			Operation: domain.OpKind(strings.ToUpper(m[1])),
			Target:    strings.ToUpper(m[2]),
		})
	}
	return found
}
