// Package commands provides the CLI commands for the go-guard-query tool.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-guard-query/pkg/cfg"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <function>",
	Short: "Extract the control flow graph for a function",
	Long: `Extracts the Control Flow Graph (CFG) for a function in a Go or Python
file. Outputs blocks, operations, and edges with branch polarity.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}

		conf, err := loadConfig()
		if err != nil {
			return err
		}
		loader := newGraphLoader(conf)
		g, err := loader.load(filePath, functionName)
		if err != nil {
			return err
		}
		loader.flush()

		jsonOutput, _ := cmd.Flags().GetBool("json")
		dotOutput, _ := cmd.Flags().GetBool("dot")

		switch {
		case dotOutput:
			return cfg.WriteDot(os.Stdout, g)
		case jsonOutput:
			data, err := json.MarshalIndent(g, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		default:
			printGraph(g)
			return nil
		}
	},
}

// printGraph prints the CFG in human-readable form.
func printGraph(g *cfg.Graph) {
	fmt.Printf("=== CFG for function: %s ===\n", g.FunctionName)
	fmt.Printf("Language: %s\n", g.Language)
	fmt.Printf("Entry Block: %d\n", g.EntryID)
	fmt.Printf("Exit Block: %d\n", g.ExitID)

	fmt.Printf("\nBlocks (%d):\n", len(g.Blocks))
	for _, blk := range g.Blocks {
		reachable := ""
		if !blk.Reachable {
			reachable = ", unreachable"
		}
		fmt.Printf("  %d (%s, lines %d-%d%s)\n", blk.ID, blk.Kind, blk.StartLine, blk.EndLine, reachable)
		if blk.Cond != nil {
			fmt.Printf("    cond [%s]: %s\n", blk.CondKind, blk.Cond.Text)
		}
		for _, op := range blk.Operations {
			fmt.Printf("    %s\n", op.Text)
		}
	}

	fmt.Println("\nEdges:")
	for _, blk := range g.Blocks {
		if blk.CondSucc != nil {
			fmt.Printf("  %d --cond--> %d\n", blk.ID, blk.CondSucc.Dest)
		}
		if blk.FallSucc != nil {
			fmt.Printf("  %d --fall--> %d\n", blk.ID, blk.FallSucc.Dest)
		}
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cfgCmd.Flags().Bool("dot", false, "Output as Graphviz DOT")
	RootCmd.AddCommand(cfgCmd)
}
