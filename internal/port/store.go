package port

import "cobolscan/internal/domain"

type ProgramStore interface {
	PutProgram(prog domain.Program) error

	GetProgram(id string) (domain.Program, error)

	FindProgram(nameOrPath string) (domain.Program, error)

	DeleteProgram(id string) error

	ListPrograms() ([]domain.Program, error)

	PutSummary(sum domain.Summary) error

	GetSummary(programID, paragraph string) (domain.Summary, error)

	ListSummaries(programID string) ([]domain.Summary, error)

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Close() error
}
