package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/ui"
)

// ask <message>: send one message and print the reply.
func askCmd() *cobra.Command {
	var image bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			mode := chat.DetectMode(message)
			if image {
				mode = chat.ModeImage
			}

			c, err := newClient()
			if err != nil {
				return err
			}
			reply, err := c.Send(cmd.Context(), message, mode)
			if err != nil {
				return err
			}

			p, err := prefsStore().Load()
			if err != nil {
				logger.WarnCF("ask", "Ignoring unreadable prefs", map[string]interface{}{"error": err.Error()})
			}
			styles := ui.NewStyles(p.Theme)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.BotLine(reply.Text, reply.Fallback))
			if reply.ImageBase64 != "" {
				path, err := saveImage(".", reply.ImageBase64)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, styles.Muted.Render("imagem salva em "+path))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&image, "image", false, "force image mode")
	return cmd
}
