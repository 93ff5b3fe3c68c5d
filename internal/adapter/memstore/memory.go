package memstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"cobolscan/internal/domain"
)

type summaryKey struct {
	programID string
	paragraph string
}

// MemoryStore is a ProgramStore kept entirely in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	programs  map[string]domain.Program
	names     map[string]string
	summaries map[summaryKey]domain.Summary
	stats     domain.Stats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		programs:  make(map[string]domain.Program),
		names:     make(map[string]string),
		summaries: make(map[summaryKey]domain.Summary),
	}
}

func (s *MemoryStore) PutProgram(prog domain.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[prog.ID] = prog
	if prog.Name != "" {
		s.names[strings.ToUpper(prog.Name)] = prog.ID
	}
	return nil
}

func (s *MemoryStore) GetProgram(id string) (domain.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prog, ok := s.programs[id]
	if !ok {
		return domain.Program{}, fmt.Errorf("program %s: %w", id, domain.ErrNotFound)
	}
	return prog, nil
}

func (s *MemoryStore) FindProgram(nameOrPath string) (domain.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if prog, ok := s.programs[nameOrPath]; ok {
		return prog, nil
	}
	if id, ok := s.names[strings.ToUpper(nameOrPath)]; ok {
		return s.programs[id], nil
	}
	for _, prog := range s.programs {
		if prog.Path == nameOrPath {
			return prog, nil
		}
	}
	return domain.Program{}, fmt.Errorf("program %s: %w", nameOrPath, domain.ErrNotFound)
}

func (s *MemoryStore) DeleteProgram(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.programs, id)
	for name, pid := range s.names {
		if pid != id {
			continue
		}
		if survivor := s.programWithName(name); survivor != "" {
			s.names[name] = survivor
		} else {
			delete(s.names, name)
		}
	}
	for k := range s.summaries {
		if k.programID == id {
			delete(s.summaries, k)
		}
	}
	return nil
}

// programWithName returns the smallest id among programs named name, or "".
func (s *MemoryStore) programWithName(name string) string {
	var id string
	for pid, prog := range s.programs {
		if strings.ToUpper(prog.Name) == name && (id == "" || pid < id) {
			id = pid
		}
	}
	return id
}

// ListPrograms returns programs ordered by id, matching the bolt store.
func (s *MemoryStore) ListPrograms() ([]domain.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progs := make([]domain.Program, 0, len(s.programs))
	for _, prog := range s.programs {
		progs = append(progs, prog)
	}
	sort.Slice(progs, func(i, j int) bool { return progs[i].ID < progs[j].ID })
	return progs, nil
}

func (s *MemoryStore) PutSummary(sum domain.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey{sum.ProgramID, sum.Paragraph}] = sum
	return nil
}

func (s *MemoryStore) GetSummary(programID, paragraph string) (domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[summaryKey{programID, paragraph}]
	if !ok {
		return domain.Summary{}, fmt.Errorf("summary %s/%s: %w", programID, paragraph, domain.ErrNotFound)
	}
	return sum, nil
}

func (s *MemoryStore) ListSummaries(programID string) ([]domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sums []domain.Summary
	for k, sum := range s.summaries {
		if k.programID == programID {
			sums = append(sums, sum)
		}
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].Paragraph < sums[j].Paragraph })
	return sums, nil
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
