package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-guard-query/internal/log"
	"github.com/l3aro/go-guard-query/internal/scanner"
	"github.com/l3aro/go-guard-query/pkg/cfg"
	"github.com/l3aro/go-guard-query/pkg/platform"
)

// SiteInfo is one discovered call site.
type SiteInfo struct {
	File      string `json:"file"`
	Function  string `json:"function"` // Enclosing function
	Line      int    `json:"line"`
	Operation string `json:"operation"`
	Guard     string `json:"guard,omitempty"` // Only with --guard
}

// SitesOutput is the JSON shape of the sites command output.
type SitesOutput struct {
	TargetFunc string     `json:"target_func"`
	RootDir    string     `json:"root_dir"`
	Sites      []SiteInfo `json:"sites"`
	Count      int        `json:"count"`
}

// sitesCmd represents the sites command
var sitesCmd = &cobra.Command{
	Use:   "sites <dir>",
	Short: "List call sites of a function across a project",
	Long: `Walks a project directory, finds every call site of the named function,
and optionally computes the platform guard guaranteed at each one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		funcName, _ := cmd.Flags().GetString("func")
		withGuard, _ := cmd.Flags().GetBool("guard")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		if funcName == "" {
			return fmt.Errorf("--func is required")
		}
		return runSites(args[0], funcName, withGuard, jsonOutput)
	},
}

func runSites(rootDir, funcName string, withGuard, jsonOutput bool) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	recognizer := platform.NewRecognizer(conf.PredicateFunctions)
	loader := newGraphLoader(conf)
	defer loader.flush()

	sc := scanner.New(scanner.DefaultOptions())
	files, err := sc.Scan(rootDir)
	if err != nil {
		return fmt.Errorf("scanning directory: %w", err)
	}

	needle := funcName + "("
	var sites []SiteInfo
	for _, f := range files {
		funcs, err := cfg.ListFunctions(f.FullPath)
		if err != nil {
			log.Default().Warn("skipping unparsable file", "file", f.Path, "error", err)
			continue
		}
		for _, fn := range funcs {
			g, err := loader.load(f.FullPath, fn.Name)
			if err != nil {
				log.Default().Warn("skipping function", "file", f.Path, "function", fn.Name, "error", err)
				continue
			}
			for _, blk := range g.Blocks {
				for _, op := range blk.Operations {
					if !strings.Contains(op.Text, needle) {
						continue
					}
					site := SiteInfo{
						File:      f.Path,
						Function:  fn.Name,
						Line:      op.StartLine,
						Operation: op.Text,
					}
					if withGuard {
						site.Guard = platform.Analyze(g, blk, recognizer).String()
					}
					sites = append(sites, site)
				}
			}
		}
	}

	if jsonOutput {
		out := SitesOutput{
			TargetFunc: funcName,
			RootDir:    rootDir,
			Sites:      sites,
			Count:      len(sites),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(sites) == 0 {
		fmt.Printf("No call sites of %s found in %s\n", funcName, rootDir)
		return nil
	}

	fmt.Printf("=== Call sites of %s (%d) ===\n", funcName, len(sites))
	for _, site := range sites {
		fmt.Printf("  %s:%d in %s\n", site.File, site.Line, site.Function)
		fmt.Printf("    %s\n", truncate(site.Operation, 80))
		if withGuard {
			fmt.Printf("    guard: %s\n", site.Guard)
		}
	}
	return nil
}

func init() {
	sitesCmd.Flags().StringP("func", "f", "", "Function whose call sites to find (required)")
	sitesCmd.Flags().BoolP("guard", "g", false, "Compute the guard at each site")
	sitesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(sitesCmd)
}
