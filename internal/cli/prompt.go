package cli

import (
	"fmt"

	"cobolscan/internal/usecase"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt PROGRAM PARAGRAPH",
	Short: "Print the summarization prompt for a paragraph",
	Long: `Render the prompt that 'summarize' would send for one paragraph, without
calling a model. Useful for manual LLM orchestration.

Examples:
  cobolscan prompt PAYROLL CALC-PARA`,
	Args: cobra.ExactArgs(2),
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	st, prog, err := loadProgram(GetRootDir(), args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	prompt, err := usecase.RenderPrompt(prog, paragraphName(prog.Model, args[1]))
	if err != nil {
		return err
	}

	fmt.Println(prompt)
	return nil
}
