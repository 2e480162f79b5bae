package cli

import (
	"github.com/spf13/cobra"

	"github.com/seuros/nestegg/internal/config"
)

var Version = "dev"

// Flag overrides shared by every command
var (
	flagDatabaseURL  string
	flagPort         string
	flagSessionStore string
	flagRedisAddr    string
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "nestegg",
	Short: "Track savings goals",
	Long: `Nestegg - a small savings goal tracker.

Enter what you want to save for, what you have and what you put aside each
month; nestegg works out how far along you are and how many months remain.
Goals are kept per anonymous browser session.`,
	Version:      Version,
	SilenceUsage: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string) error {
	Version = version
	RootCmd.Version = version
	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(config.Overrides{
		DatabaseURL:  flagDatabaseURL,
		Port:         flagPort,
		SessionStore: flagSessionStore,
		RedisAddr:    flagRedisAddr,
	})
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flags.StringVar(&flagPort, "port", "", "HTTP port (overrides PORT)")
	flags.StringVar(&flagSessionStore, "session-store", "", "Session backend: cookie or redis")
	flags.StringVar(&flagRedisAddr, "redis-addr", "", "Redis address for the redis session store")

	RootCmd.AddCommand(serveCmd)
}
