package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantumx/quantumx/pkg/client"
	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/prefs"
)

var (
	version = "dev"

	configPath string
	serverURL  string
	logLevel   string
	cfg        *config.Config
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quantumx",
		Short:        "QuantumX chat assistant: web server and terminal client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(config.ExpandHome(configPath))
			if err != nil {
				return err
			}
			if serverURL != "" {
				loaded.Client.ServerURL = serverURL
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			logger.Configure(os.Stderr, loaded.Log.Format, loaded.Log.Level)
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "~/.quantumx/config.json", "config file")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL for client commands")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(initCmd(), serveCmd(), chatCmd(), askCmd(), healthCmd(), themeCmd(), versionCmd())
	return root
}

func newClient() (*client.Client, error) {
	return client.New(cfg.Client.ServerURL,
		client.WithTimeout(time.Duration(cfg.Client.Timeout)*time.Second))
}

func prefsStore() *prefs.Store {
	return prefs.NewStore(cfg.PrefsPath())
}
