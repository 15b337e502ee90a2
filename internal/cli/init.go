package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lantern-lab/lantern/internal/config"
	"github.com/lantern-lab/lantern/internal/db"
	"github.com/lantern-lab/lantern/internal/templates"
	"github.com/lantern-lab/lantern/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool
	var instructions bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default experiment configuration",
		Long: `Write .lantern/config.json in the current directory with the default
experiment parameters, and create the output directory.

When the store is sqlite or both, the session database is created too.
With --instructions the built-in instruction pages are written under the
image directory, leaving any existing page folders untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			path := filepath.Join(cwd, ".lantern", "config.json")
			cfg := config.Default()
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("Config already exists at %s (use --force to overwrite)\n", path)
				if cfg, err = config.LoadConfig(cwd); err != nil {
					return err
				}
			} else {
				if err := config.SaveConfig(cwd, cfg); err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s\n", path)
			}

			if err := os.MkdirAll(cfg.OutputLocation, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			fmt.Printf("✓ Output directory %s\n", cfg.OutputLocation)

			if cfg.Store == "sqlite" || cfg.Store == "both" {
				conn, err := db.Open(cfg.ResolvedDatabasePath())
				if err != nil {
					return err
				}
				conn.Close()
				fmt.Printf("✓ Database initialized at %s\n", cfg.ResolvedDatabasePath())
			}

			if instructions {
				written, err := templates.WriteInstructions(cfg.ImageDir, wire.InstructionData(cfg))
				if err != nil {
					return err
				}
				fmt.Printf("✓ %d instruction pages written under %s\n", len(written), cfg.ImageDir)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  lantern validate")
			fmt.Println("  lantern run --participant P01 --age-group adult")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "Write the built-in instruction pages")

	return cmd
}
