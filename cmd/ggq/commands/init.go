package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-guard-query/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ggq configuration interactively",
	Long: `Guides you through setting up ggq configuration step by step.
Creates a config file with the platform predicate function names the
analysis recognizes and the graph cache settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	defaults := config.DefaultConfig()

	// === SECTION 1: Predicate functions ===
	predicates := strings.Join(defaults.PredicateFunctions, ", ")
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Platform predicate functions").
				Description("Comma-separated function names treated as platform checks").
				Placeholder(predicates).
				Value(&predicates),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Graph cache ===
	var enableCache bool
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Graph cache").
				Description("Persist built control flow graphs to disk between runs?").
				Affirmative("Yes, enable cache").
				Negative("No, rebuild every run").
				Value(&enableCache),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	cacheDir := ""
	if enableCache {
		cacheDir = defaults.CacheDir
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache directory").
					Placeholder(defaults.CacheDir).
					Value(&cacheDir),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}

	// === SECTION 3: Config location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.ggq/config.yaml)", "global"),
					huh.NewOption("Project (./.ggq/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".ggq", "config.yaml")
	} else {
		configPath = config.ProjectConfigFilePath()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	conf := config.DefaultConfig()
	conf.PredicateFunctions = splitPredicates(predicates)
	conf.CacheDir = cacheDir

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Show config preview
	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Predicate functions: %s\n", strings.Join(conf.PredicateFunctions, ", "))
	if conf.CacheDir == "" {
		fmt.Println("Graph cache: disabled")
	} else {
		fmt.Printf("Cache directory: %s\n", conf.CacheDir)
		fmt.Printf("Cache max entries: %d\n", conf.CacheMaxEntries)
	}
	fmt.Println("================================")

	if err := conf.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

// splitPredicates parses a comma-separated list, dropping blank entries.
func splitPredicates(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func init() {
	RootCmd.AddCommand(initCmd)
}
