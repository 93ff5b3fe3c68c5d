package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cobolscan/config"
	"cobolscan/internal/adapter/llm"
	"cobolscan/internal/adapter/scanner"
	"cobolscan/internal/adapter/store"
	"cobolscan/internal/domain"
	"cobolscan/internal/port"
)

// newScanner builds a scanner from the scan settings, with flag overrides
// applied when non-empty.
func newScanner(sc config.ScanConfig, duplicates, edgeOrder string, logger *slog.Logger) (*scanner.Scanner, error) {
	if duplicates == "" {
		duplicates = sc.Duplicates
	}
	if edgeOrder == "" {
		edgeOrder = sc.EdgeOrder
	}

	policy, err := scanner.ParseDuplicatePolicy(duplicates)
	if err != nil {
		return nil, err
	}
	order, err := scanner.ParseEdgeOrder(edgeOrder)
	if err != nil {
		return nil, err
	}

	return scanner.New(scanner.Options{
		Duplicates: policy,
		EdgeOrder:  order,
		Concurrent: sc.Concurrent,
		Logger:     logger,
	}), nil
}

// openStore opens the program database under dir. It fails if no scan has
// been run there yet.
func openStore(dir string) (*store.BoltStore, error) {
	dbPath := config.IndexDBPath(dir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no index found. Run 'cobolscan scan' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return st, nil
}

// loadProgram opens the store and resolves a program by name, id or path.
// The caller closes the returned store.
func loadProgram(dir, name string) (*store.BoltStore, domain.Program, error) {
	st, err := openStore(dir)
	if err != nil {
		return nil, domain.Program{}, err
	}
	prog, err := st.FindProgram(name)
	if err != nil {
		st.Close()
		return nil, domain.Program{}, err
	}
	return st, prog, nil
}

// newLLM creates the configured summarization model.
func newLLM(sc config.SummarizeConfig) (port.LLM, error) {
	opts := llm.Options{
		Temperature: sc.Temperature,
		MaxTokens:   sc.MaxTokens,
		Timeout:     time.Duration(sc.TimeoutSeconds) * time.Second,
	}

	var (
		model port.LLM
		err   error
	)
	switch sc.Provider {
	case "openai":
		if sc.BaseURL != "" {
			model, err = llm.NewOpenAICompatibleClient(sc.APIKeyEnv, sc.Model, sc.BaseURL, opts)
		} else {
			model, err = llm.NewOpenAIClient(sc.APIKeyEnv, sc.Model, opts)
		}
	case "azure":
		model, err = llm.NewAzureClient(sc.APIKeyEnv, sc.BaseURL, sc.Deployment, sc.APIVersion, opts)
	case "mock":
		model = llm.NewMockLLM()
	default:
		return nil, fmt.Errorf("unsupported summarize provider: %s", sc.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return model, nil
}

// paragraphName resolves a user-typed paragraph name against m, falling back
// to a case-insensitive match.
func paragraphName(m *domain.Model, name string) string {
	if _, ok := m.Paragraphs.Get(name); ok {
		return name
	}
	for pair := m.Paragraphs.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, name) {
			return pair.Key
		}
	}
	return name
}
