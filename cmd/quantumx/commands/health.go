package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Query the server health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("server %s unreachable: %w", cfg.Client.ServerURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (sessões ativas: %d, runtime: %s)\n",
				h.Name, h.Status, h.ActiveSessions, h.Runtime)
			return nil
		},
	}
}
