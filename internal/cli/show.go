package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showFacet     string
	showJSON      bool
	showSummaries bool
)

var showCmd = &cobra.Command{
	Use:   "show PROGRAM",
	Short: "Print a stored program model",
	Long: `Print the model of a scanned program. PROGRAM is the program name
(file name without extension), its id, or its path.

Examples:
  cobolscan show PAYROLL
  cobolscan show PAYROLL --facet dependencies --json
  cobolscan show PAYROLL --summaries`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showFacet, "facet", "", "print only one facet")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
	showCmd.Flags().BoolVar(&showSummaries, "summaries", false, "print stored paragraph summaries")
}

func runShow(cmd *cobra.Command, args []string) error {
	st, prog, err := loadProgram(GetRootDir(), args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	if showSummaries {
		summaries, err := st.ListSummaries(prog.ID)
		if err != nil {
			return err
		}
		if showJSON {
			return writeJSON(os.Stdout, summaries)
		}
		if len(summaries) == 0 {
			fmt.Println("No summaries. Run 'cobolscan summarize' first.")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("--- %s (%s) ---\n%s\n\n", s.Paragraph, s.Model, s.Text)
		}
		return nil
	}

	if showJSON {
		v, err := facetValue(prog.Model, showFacet)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, v)
	}

	fmt.Printf("%s  %s  (%d lines, modified %s)\n\n", prog.Name, prog.Path, prog.Lines, prog.ModTime.Format("2006-01-02 15:04"))
	return writeModel(os.Stdout, prog.Model, showFacet)
}
