package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"cobolscan/internal/ctxlog"
	"cobolscan/internal/domain"
	"cobolscan/internal/port"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

var summaryTemplate = template.Must(
	template.New("summary_prompt.txt").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptTemplates, "templates/summary_prompt.txt"),
)

const systemPrompt = "You are a maintainer of legacy COBOL systems. " +
	"You explain paragraphs to engineers who will modernize them. Be precise and brief."

// PromptData is the input to the summarization prompt template.
type PromptData struct {
	Program    string
	Paragraph  string
	Section    string
	Body       string
	Edges      []domain.DependencyEdge
	Operations []domain.ResourceOperation
	Copybooks  []string
}

// RenderPrompt renders the user prompt for one paragraph of a scanned program.
func RenderPrompt(prog domain.Program, paragraph string) (string, error) {
	body, ok := prog.Model.Paragraphs.Get(paragraph)
	if !ok {
		return "", fmt.Errorf("paragraph %s not found in %s", paragraph, prog.Name)
	}
	section, _ := prog.Model.SectionOf(paragraph)

	data := PromptData{
		Program:    prog.Name,
		Paragraph:  paragraph,
		Section:    section,
		Body:       body,
		Edges:      prog.Model.EdgesOf(paragraph),
		Operations: prog.Model.OperationsOf(paragraph),
		Copybooks:  prog.Model.Copybooks,
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// SummarizeOptions controls a summarization run.
type SummarizeOptions struct {
	// Paragraphs limits the run to these names. Empty means all paragraphs.
	Paragraphs  []string
	Force       bool
	Concurrency int
	// Progress is called after each generated summary.
	Progress ProgressFunc
}

// SummarizeResult reports what a run did.
type SummarizeResult struct {
	Generated []string
	Skipped   []string
}

// SummarizeUseCase generates paragraph summaries with an LLM and stores them.
type SummarizeUseCase struct {
	store port.ProgramStore
	llm   port.LLM
	now   func() time.Time
}

func NewSummarizeUseCase(store port.ProgramStore, llm port.LLM) *SummarizeUseCase {
	return &SummarizeUseCase{store: store, llm: llm, now: time.Now}
}

// Summarize generates summaries for the paragraphs of prog. A paragraph is
// skipped when a stored summary was made by the same model from the same body,
// unless opts.Force is set. The first failure cancels the remaining requests.
func (u *SummarizeUseCase) Summarize(ctx context.Context, prog domain.Program, opts SummarizeOptions) (*SummarizeResult, error) {
	log := ctxlog.FromContext(ctx)

	targets := prog.Model.ParagraphNames()
	if len(opts.Paragraphs) > 0 {
		targets = targets[:0:0]
		seen := make(map[string]bool)
		for _, p := range opts.Paragraphs {
			if _, ok := prog.Model.Paragraphs.Get(p); !ok {
				return nil, fmt.Errorf("paragraph %s not found in %s", p, prog.Name)
			}
			if !seen[p] {
				seen[p] = true
				targets = append(targets, p)
			}
		}
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var (
		mu     sync.Mutex
		result = &SummarizeResult{}
	)
	generated := make(map[string]bool)
	skipped := make(map[string]bool)

	hashes := make(map[string]string, len(targets))
	var work []string
	for _, paragraph := range targets {
		body, _ := prog.Model.Paragraphs.Get(paragraph)
		hash := ContentHash(body)
		hashes[paragraph] = hash

		if !opts.Force {
			prev, err := u.store.GetSummary(prog.ID, paragraph)
			switch {
			case err == nil && prev.ContentHash == hash && prev.Model == u.llm.ModelName():
				skipped[paragraph] = true
				log.Debug("summary up to date", "program", prog.Name, "paragraph", paragraph)
				continue
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				return nil, fmt.Errorf("failed to read summary for %s: %w", paragraph, err)
			}
		}
		work = append(work, paragraph)
	}
	pending := len(work)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, paragraph := range work {
		hash := hashes[paragraph]
		g.Go(func() error {
			prompt, err := RenderPrompt(prog, paragraph)
			if err != nil {
				return err
			}

			text, err := u.llm.GenerateWithSystem(ctx, systemPrompt, prompt)
			if err != nil {
				return fmt.Errorf("summarizing %s: %w", paragraph, err)
			}

			sum := domain.Summary{
				ProgramID:   prog.ID,
				Paragraph:   paragraph,
				Model:       u.llm.ModelName(),
				ContentHash: hash,
				Text:        text,
				CreatedAt:   u.now(),
			}
			if err := u.store.PutSummary(sum); err != nil {
				return fmt.Errorf("failed to store summary for %s: %w", paragraph, err)
			}

			mu.Lock()
			generated[paragraph] = true
			if opts.Progress != nil {
				opts.Progress(len(generated), pending, paragraph)
			}
			mu.Unlock()
			log.Info("summarized", "program", prog.Name, "paragraph", paragraph)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// report in source order
	for _, p := range targets {
		switch {
		case generated[p]:
			result.Generated = append(result.Generated, p)
		case skipped[p]:
			result.Skipped = append(result.Skipped, p)
		}
	}
	return result, nil
}

// ContentHash identifies a paragraph body for summary reuse.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
