package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantumx/quantumx/pkg/prefs"
)

// theme [dark|light]: show or persist the terminal theme.
func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the saved theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(prefs.ThemeDark), string(prefs.ThemeLight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			store := prefsStore()
			if len(args) == 0 {
				p, err := store.Load()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Theme)
				return nil
			}

			theme, err := prefs.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if _, err := store.SetTheme(theme); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tema: %s\n", theme)
			return nil
		},
	}
}
