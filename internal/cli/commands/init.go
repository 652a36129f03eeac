package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new starbridge project",
		Long: `Initialize a new starbridge project with a configuration file and the
demonstration dataset.

This creates:
  - starbridge.yaml configuration file
  - data/ directory with the six-table sales star schema CSVs

The dataset matches the built-in model, so 'starbridge run' works
immediately after init.`,
		Example: `  # Initialize in current directory
  starbridge init

  # Initialize in a new directory
  starbridge init my-project

  # Force overwrite existing files
  starbridge init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Create renderer
			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "starbridge.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("starbridge.yaml already exists. Use --force to overwrite")
	}

	// Copy starter template
	if err := copyTemplate("starter", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// List created files by category
	files, _ := listTemplateFiles("starter")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Data")
	for _, f := range groups["data"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("starbridge project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  starbridge run       Load CSVs, build the bridge, generate the ERD")
	r.Println("  starbridge query     Explore the warehouse interactively")
	r.Println("  starbridge serve     Preview the ERD in a browser")

	return nil
}
