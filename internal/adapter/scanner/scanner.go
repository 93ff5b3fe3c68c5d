// Package scanner extracts the structural model of COBOL-style source text:
// divisions, sections, paragraphs, COPY references, PERFORM/CALL edges and
// file operations. It matches lines against patterns and never fails; text
// that matches nothing simply contributes nothing.
package scanner

import (
	"log/slog"

	"cobolscan/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Scanner struct {
	opts Options
}

func New(opts Options) *Scanner {
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicatesLast
	}
	if opts.EdgeOrder == "" {
		opts.EdgeOrder = EdgeOrderPattern
	}
	return &Scanner{opts: opts}
}

// Scan builds a fresh model from src.
func (s *Scanner) Scan(src string) *domain.Model {
	return s.ScanLines(SplitLines(src))
}

// ScanLines builds a fresh model from already split lines. The slice is
// only read.
func (s *Scanner) ScanLines(lines []string) *domain.Model {
	divs := segmentDivisions(lines, s.opts.Duplicates)
	hier := segmentHierarchy(lines, s.opts.Duplicates)

	model := domain.NewModel()
	model.Divisions = divs.divisions
	model.Sections = hier.sections
	model.Paragraphs = hier.paragraphs
	model.Spans = hier.spans

	if s.opts.Concurrent {
		// Each pass writes only its own field; paragraphs are read-only here.
		var g errgroup.Group
		g.Go(func() error {
			model.Copybooks = extractCopybooks(lines)
			return nil
		})
		g.Go(func() error {
			model.Dependencies = extractDependencies(hier.paragraphs, s.opts.EdgeOrder)
			return nil
		})
		g.Go(func() error {
			model.FileOperations = extractFileOperations(hier.paragraphs)
			return nil
		})
		// The passes match or do not match; none returns an error.
		g.Wait()
	} else {
		model.Copybooks = extractCopybooks(lines)
		model.Dependencies = extractDependencies(hier.paragraphs, s.opts.EdgeOrder)
		model.FileOperations = extractFileOperations(hier.paragraphs)
	}

	if s.opts.Duplicates == DuplicatesCollect {
		model.Variants = &domain.Variants{
			Divisions:  divs.variants,
			Paragraphs: hier.variants,
		}
	}

	model.Diagnostics = append(divs.diagnostics, hier.diagnostics...)
	s.report(model.Diagnostics)

	return model
}

func (s *Scanner) report(diags []domain.Diagnostic) {
	if s.opts.Logger == nil {
		return
	}
	for _, d := range diags {
		s.opts.Logger.Warn(d.Message,
			slog.String("kind", string(d.Kind)),
			slog.String("name", d.Name),
			slog.Int("line", d.Line),
		)
	}
}
