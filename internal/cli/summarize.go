package cli

import (
	"fmt"

	"cobolscan/internal/usecase"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	summarizeParagraphs []string
	summarizeForce      bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize PROGRAM",
	Short: "Generate paragraph summaries with an LLM",
	Long: `Generate a short prose summary for each paragraph of a scanned program and
store it. Paragraphs whose body and model are unchanged since the last run are
skipped unless --force is given.

Examples:
  cobolscan summarize PAYROLL
  cobolscan summarize PAYROLL --paragraph CALC-PARA --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringSliceVarP(&summarizeParagraphs, "paragraph", "p", nil, "summarize only these paragraphs")
	summarizeCmd.Flags().BoolVar(&summarizeForce, "force", false, "regenerate even when a summary is up to date")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, prog, err := loadProgram(GetRootDir(), args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	model, err := newLLM(cfg.Summarize)
	if err != nil {
		return err
	}

	paragraphs := make([]string, len(summarizeParagraphs))
	for i, p := range summarizeParagraphs {
		paragraphs[i] = paragraphName(prog.Model, p)
	}

	fmt.Printf("Summarizing %s with %s...\n", prog.Name, model.ModelName())

	var bar *progressbar.ProgressBar
	progress := func(done, total int, paragraph string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Summarizing[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	uc := usecase.NewSummarizeUseCase(st, model)
	result, err := uc.Summarize(cmd.Context(), prog, usecase.SummarizeOptions{
		Paragraphs:  paragraphs,
		Force:       summarizeForce,
		Concurrency: cfg.Summarize.Concurrency,
		Progress:    progress,
	})
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	fmt.Printf("  Generated: %d\n", len(result.Generated))
	fmt.Printf("  Skipped:   %d (up to date)\n", len(result.Skipped))
	return nil
}
