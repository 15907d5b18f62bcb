package cli

import (
	"github.com/spf13/cobra"

	"github.com/taoyao-code/timebox/internal/app/bootstrap"
)

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon that queues commands for the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap.Run(cmd.Context(), e.cfg, e.logger)
		},
	}
}
