package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-guard-query/pkg/cfg"
	"github.com/l3aro/go-guard-query/pkg/guard"
	"github.com/l3aro/go-guard-query/pkg/platform"
)

// GuardOutput is the JSON shape of one guard query result.
type GuardOutput struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
	Match    string `json:"match,omitempty"`
	BlockID  int    `json:"block_id"`
	Result   string `json:"result"` // guaranteed, empty, or unknown
	Guard    string `json:"guard,omitempty"`
	Negated  bool   `json:"negated,omitempty"`
}

// guardCmd represents the guard command
var guardCmd = &cobra.Command{
	Use:   "guard <file> <function>",
	Short: "Report the platform guard guaranteed at a call site",
	Long: `Builds the control flow graph for the function, locates the call site on
the given line, and reports which platform check is guaranteed to have
passed on every path reaching it.

If more than one operation matches the line, the query fails; narrow it
with --match, or pass --interactive to pick a candidate from a list.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _ := cmd.Flags().GetInt("line")
		match, _ := cmd.Flags().GetString("match")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		interactive, _ := cmd.Flags().GetBool("interactive")

		if line <= 0 {
			return fmt.Errorf("--line is required and must be positive")
		}

		target := guard.Target{Line: line, Match: match}
		return runGuard(args[0], args[1], target, jsonOutput, interactive)
	},
}

func runGuard(filePath, functionName string, target guard.Target, jsonOutput, interactive bool) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	recognizer := platform.NewRecognizer(conf.PredicateFunctions)

	loader := newGraphLoader(conf)
	g, err := loader.load(filePath, functionName)
	if err != nil {
		return err
	}
	loader.flush()

	result, err := guard.Query(g, target, recognizer)
	if err != nil {
		var ambiguous *guard.AmbiguousError
		if errors.As(err, &ambiguous) && interactive {
			result, err = resolveAmbiguous(g, ambiguous, recognizer)
		}
		if err != nil {
			return err
		}
	}

	out := GuardOutput{
		File:     filePath,
		Function: functionName,
		Line:     target.Line,
		Match:    target.Match,
		BlockID:  result.Block.ID,
		Result:   resultName(result.Fact),
	}
	if name, negated, ok := result.Guaranteed(); ok {
		out.Guard = name
		out.Negated = negated
	}

	if jsonOutput {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("=== Guard query: %s in %s ===\n", functionName, filePath)
	fmt.Printf("Target: %s\n", result.Target)
	fmt.Printf("Block: %d (%s, lines %d-%d)\n",
		result.Block.ID, result.Block.Kind, result.Block.StartLine, result.Block.EndLine)
	fmt.Printf("Result: %s\n", platform.Describe(result.Fact))
	return nil
}

// resolveAmbiguous presents the candidate sites and analyzes the chosen one.
func resolveAmbiguous(g *cfg.Graph, ambiguous *guard.AmbiguousError, recognizer *platform.Recognizer) (guard.Result, error) {
	options := make([]huh.Option[int], 0, len(ambiguous.Candidates))
	for i, site := range ambiguous.Candidates {
		label := fmt.Sprintf("line %d: %s", site.Operation.StartLine, truncate(site.Operation.Text, 60))
		options = append(options, huh.NewOption(label, i))
	}

	var choice int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("%d operations match %s", len(ambiguous.Candidates), ambiguous.Target)).
				Description("Select the call site to analyze").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return guard.Result{}, fmt.Errorf("interactive prompt failed: %w", err)
	}

	site := ambiguous.Candidates[choice]
	block := g.Block(site.BlockID)
	fact := platform.Analyze(g, block, recognizer)
	return guard.Result{Fact: fact, Block: block, Target: ambiguous.Target}, nil
}

func resultName(f platform.Fact) string {
	switch f.Kind {
	case platform.KindLeaf:
		return "guaranteed"
	case platform.KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func init() {
	guardCmd.Flags().IntP("line", "l", 0, "Source line of the call site (required)")
	guardCmd.Flags().StringP("match", "m", "", "Text the target operation must contain")
	guardCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	guardCmd.Flags().BoolP("interactive", "i", false, "Select among ambiguous matches interactively")
	RootCmd.AddCommand(guardCmd)
}
