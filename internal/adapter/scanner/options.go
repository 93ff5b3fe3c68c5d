package scanner

import (
	"fmt"
	"log/slog"
)

// DuplicatePolicy decides what happens when a division or paragraph name
// appears more than once.
type DuplicatePolicy string

const (
	// DuplicatesLast keeps only the last body seen for a name.
	DuplicatesLast DuplicatePolicy = "last"
	// DuplicatesCollect also keeps every body, in order, in Model.Variants.
	DuplicatesCollect DuplicatePolicy = "collect"
)

// EdgeOrder decides how PERFORM and CALL edges of one paragraph are ordered.
type EdgeOrder string

const (
	// EdgeOrderPattern lists every PERFORM edge before any CALL edge.
	EdgeOrderPattern EdgeOrder = "pattern"
	// EdgeOrderDocument lists edges by their position in the paragraph.
	EdgeOrderDocument EdgeOrder = "document"
)

type Options struct {
	Duplicates DuplicatePolicy
	EdgeOrder  EdgeOrder
	// Concurrent runs the COPY, dependency and file operation passes in
	// parallel. The resulting model is identical.
	Concurrent bool
	Logger     *slog.Logger
}

// DefaultOptions returns last-wins duplicates and pattern edge order.
func DefaultOptions() Options {
	return Options{
		Duplicates: DuplicatesLast,
		EdgeOrder:  EdgeOrderPattern,
	}
}

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicatesLast:
		return DuplicatesLast, nil
	case DuplicatesCollect:
		return DuplicatesCollect, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q (want last or collect)", s)
}

func ParseEdgeOrder(s string) (EdgeOrder, error) {
	switch EdgeOrder(s) {
	case "", EdgeOrderPattern:
		return EdgeOrderPattern, nil
	case EdgeOrderDocument:
		return EdgeOrderDocument, nil
	}
	return "", fmt.Errorf("unknown edge order %q (want pattern or document)", s)
}
