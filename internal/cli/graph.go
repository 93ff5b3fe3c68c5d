package cli

import (
	"fmt"
	"os"
	"strings"

	"cobolscan/internal/adapter/analyzer"
	"github.com/spf13/cobra"
)

var (
	graphFrom string
	graphDOT  bool
)

var graphCmd = &cobra.Command{
	Use:   "graph PROGRAM",
	Short: "Analyze the PERFORM/CALL graph of a program",
	Long: `Report the paragraph call graph of a scanned program: callees, callers,
paragraphs unreachable from the entry paragraph, PERFORM cycles, PERFORM
targets with no paragraph, and external CALL targets.

Examples:
  cobolscan graph PAYROLL
  cobolscan graph PAYROLL --from CALC-PARA
  cobolscan graph PAYROLL --dot | dot -Tsvg > payroll.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphFrom, "from", "", "report reachability from this paragraph")
	graphCmd.Flags().BoolVar(&graphDOT, "dot", false, "write Graphviz DOT to stdout")
}

func runGraph(cmd *cobra.Command, args []string) error {
	st, prog, err := loadProgram(GetRootDir(), args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	cg, err := analyzer.BuildCallGraph(prog.Model)
	if err != nil {
		return fmt.Errorf("failed to build call graph: %w", err)
	}

	if graphDOT {
		return cg.WriteDOT(os.Stdout)
	}

	if graphFrom != "" {
		from := paragraphName(prog.Model, graphFrom)
		reached, err := cg.Reachable(from)
		if err != nil {
			return err
		}
		fmt.Printf("Reachable from %s (%d):\n", from, len(reached))
		for _, p := range reached {
			fmt.Printf("  %s\n", p)
		}
		return nil
	}

	fmt.Printf("Call graph of %s\n\n", prog.Name)
	for _, p := range cg.Paragraphs() {
		callees := cg.Callees(p)
		callers := cg.Callers(p)
		fmt.Printf("%s\n", p)
		if len(callers) > 0 {
			fmt.Printf("  called by: %s\n", strings.Join(callers, ", "))
		}
		for _, c := range callees {
			switch c.Kind {
			case analyzer.NodeExternal:
				fmt.Printf("  -> CALL %s\n", c.Name)
			case analyzer.NodeMissing:
				fmt.Printf("  -> %s (missing)\n", c.Name)
			default:
				fmt.Printf("  -> %s\n", c.Name)
			}
		}
	}

	unreachable, err := cg.Unreachable()
	if err != nil {
		return err
	}
	cycles, err := cg.Cycles()
	if err != nil {
		return err
	}

	entry, _ := cg.EntryPoint()
	fmt.Printf("\nEntry paragraph: %s\n", entry)
	printList("Unreachable", unreachable)
	printList("Missing", cg.Missing())
	printList("External calls", cg.ExternalCalls())
	if len(cycles) > 0 {
		fmt.Printf("Cycles (%d):\n", len(cycles))
		for _, c := range cycles {
			fmt.Printf("  %s\n", strings.Join(c, " -> "))
		}
	}
	return nil
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s (%d): %s\n", title, len(items), strings.Join(items, ", "))
}
