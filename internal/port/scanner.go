package port

import "cobolscan/internal/domain"

// Scanner extracts the structural model of one program's source text.
type Scanner interface {
	Scan(src string) *domain.Model
}
