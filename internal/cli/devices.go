package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/timebox/internal/storage"
	"github.com/taoyao-code/timebox/internal/transport"
)

func newDevicesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage known devices",
	}
	cmd.AddCommand(newDevicesListCommand(e))
	cmd.AddCommand(newDevicesAddCommand(e))
	cmd.AddCommand(newDevicesRemoveCommand(e))
	return cmd
}

func newDevicesListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADDRESS\tNAME\tADDED\tLAST SEEN")
			for _, d := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Address, d.Name, d.AddedAt.Format(time.RFC3339), lastSeen(d))
			}
			return w.Flush()
		},
	}
}

func lastSeen(d storage.KnownDevice) string {
	if d.LastSeenAt == nil {
		return "-"
	}
	return d.LastSeenAt.Format(time.RFC3339)
}

func newDevicesAddCommand(e *env) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add ADDRESS",
		Short: "Add a known device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := transport.NormalizeAddress(args[0])
			if err != nil {
				return err
			}
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Add(cmd.Context(), storage.KnownDevice{Address: addr, Name: name, AddedAt: e.now()}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newDevicesRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ADDRESS",
		Short: "Remove a known device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := transport.NormalizeAddress(args[0])
			if err != nil {
				return err
			}
			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Remove(cmd.Context(), addr); err != nil {
				return fmt.Errorf("%s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", addr)
			return nil
		},
	}
}
