package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cobolscan/internal/adapter/scanner"
	"cobolscan/internal/ctxlog"
	"cobolscan/internal/domain"
	"cobolscan/internal/port"
)

// ProgressFunc is called after each file is processed.
type ProgressFunc func(processed, total int, currentFile string)

// ScanUseCase scans a source tree and keeps the program store in sync with it.
type ScanUseCase struct {
	store   port.ProgramStore
	walker  port.FileWalker
	reader  port.FileReader
	scanner port.Scanner
}

// NewScanUseCase creates a new scan use case.
func NewScanUseCase(
	store port.ProgramStore,
	walker port.FileWalker,
	reader port.FileReader,
	scanner port.Scanner,
) *ScanUseCase {
	return &ScanUseCase{
		store:   store,
		walker:  walker,
		reader:  reader,
		scanner: scanner,
	}
}

// ScanResult contains the results of a scan.
type ScanResult struct {
	FilesScanned int
	FilesSkipped int
	FilesDeleted int
	Paragraphs   int
	Edges        int
	Diagnostics  int
	Errors       []string
}

// Scan scans every matching file under root. Files whose modification time
// has not moved since the last scan are skipped, and programs whose files
// disappeared are removed along with their summaries.
func (u *ScanUseCase) Scan(ctx context.Context, root string, progress ProgressFunc) (*ScanResult, error) {
	log := ctxlog.FromContext(ctx)
	result := &ScanResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existing, err := u.store.ListPrograms()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing programs: %w", err)
	}

	existingMap := make(map[string]domain.Program, len(existing))
	for _, prog := range existing {
		existingMap[prog.Path] = prog
	}

	seenPaths := make(map[string]bool)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seenPaths[file.Path] = true

		if prev, ok := existingMap[file.Path]; ok && prev.ModTime.Unix() >= file.ModTime {
			result.FilesSkipped++
			log.Debug("unchanged", "path", file.Path)
		} else if err := u.scanFile(ctx, file, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to scan %s: %v", file.Path, err))
		} else {
			result.FilesScanned++
		}

		if progress != nil {
			progress(i+1, len(files), file.Path)
		}
	}

	for path, prog := range existingMap {
		if seenPaths[path] {
			continue
		}
		if err := u.store.DeleteProgram(prog.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		log.Info("removed program", "name", prog.Name, "path", path)
		result.FilesDeleted++
	}

	stats, err := u.collectStats()
	if err != nil {
		return nil, err
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	return result, nil
}

func (u *ScanUseCase) scanFile(ctx context.Context, file port.FileInfo, result *ScanResult) error {
	content, err := u.reader.ReadFile(file.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	lines := scanner.SplitLines(content)
	model := u.scanner.Scan(content)

	prog := domain.Program{
		ID:      generateProgramID(file.Path),
		Path:    file.Path,
		Name:    programName(file.Path),
		ModTime: time.Unix(file.ModTime, 0),
		Lines:   len(lines),
		Model:   model,
	}

	if err := u.store.PutProgram(prog); err != nil {
		return fmt.Errorf("failed to store program: %w", err)
	}

	result.Paragraphs += model.Paragraphs.Len()
	result.Edges += model.EdgeCount()
	result.Diagnostics += len(model.Diagnostics)

	ctxlog.FromContext(ctx).Debug("scanned",
		"program", prog.Name,
		"paragraphs", model.Paragraphs.Len(),
		"edges", model.EdgeCount(),
	)
	return nil
}

func (u *ScanUseCase) collectStats() (domain.Stats, error) {
	progs, err := u.store.ListPrograms()
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to list programs: %w", err)
	}

	stats := domain.Stats{TotalPrograms: len(progs)}
	for _, p := range progs {
		if p.Model == nil {
			continue
		}
		stats.TotalParagraphs += p.Model.Paragraphs.Len()
		stats.TotalEdges += p.Model.EdgeCount()
	}
	return stats, nil
}

// ParseFile scans a single file without touching the store.
func ParseFile(reader port.FileReader, sc port.Scanner, path string) (*domain.Model, error) {
	content, err := reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return sc.Scan(content), nil
}

// generateProgramID creates a stable ID for a program based on its path.
func generateProgramID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

// programName derives the program name from the file name, e.g.
// src/payroll.cbl becomes PAYROLL.
func programName(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}
