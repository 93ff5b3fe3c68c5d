package cli

import (
	"fmt"
	"os"

	"cobolscan/internal/adapter/fs"
	"cobolscan/internal/ctxlog"
	"cobolscan/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	parseJSON       bool
	parseFacet      string
	parseDuplicates string
	parseEdgeOrder  string
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Scan one COBOL file and print its structure",
	Long: `Scan a single COBOL source file and print the extracted model without
storing it.

Examples:
  cobolscan parse payroll.cbl
  cobolscan parse payroll.cbl --json
  cobolscan parse payroll.cbl --duplicates collect --edge-order document --json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output as JSON")
	parseCmd.Flags().StringVar(&parseFacet, "facet", "", "print only one facet")
	parseCmd.Flags().StringVar(&parseDuplicates, "duplicates", "", "duplicate name policy: last or collect (default from config)")
	parseCmd.Flags().StringVar(&parseEdgeOrder, "edge-order", "", "edge order: pattern or document (default from config)")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	sc, err := newScanner(cfg.Scan, parseDuplicates, parseEdgeOrder, ctxlog.FromContext(cmd.Context()))
	if err != nil {
		return err
	}

	model, err := usecase.ParseFile(fs.Reader{}, sc, args[0])
	if err != nil {
		return err
	}

	if parseJSON {
		v, err := facetValue(model, parseFacet)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, v)
	}

	fmt.Printf("%s\n\n", args[0])
	return writeModel(os.Stdout, model, parseFacet)
}
