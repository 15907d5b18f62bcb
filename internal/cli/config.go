package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/timebox/internal/config"
)

func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(e))
	return cmd
}

func newConfigInitCommand(e *env) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				dir, err := config.DataDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, "timebox.yaml")
			}
			if err := config.Persist(path, e.cfg, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Target file (default <user config dir>/timebox/timebox.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
