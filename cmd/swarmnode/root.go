package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/swarmnode-ai/swarmnode-go/pkg/resources"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

const (
	keyAPIKey     = "api_key"
	keyAPIBase    = "api_base"
	keyVerbose    = "verbose"
	keyConfigFile = "config"

	envAPIBase = "SWARMNODE_API_BASE"
)

// ClientFactory builds the resource client the commands talk to
type ClientFactory func(cfg *swarmnode.Config) (*resources.Client, error)

type app struct {
	v         *viper.Viper
	newClient ClientFactory
}

// NewRootCmd returns the swarmnode command tree talking to the real API
func NewRootCmd() *cobra.Command {
	return newRootCmd(func(cfg *swarmnode.Config) (*resources.Client, error) {
		return resources.New(cfg)
	})
}

func newRootCmd(newClient ClientFactory) *cobra.Command {
	a := &app{v: viper.New(), newClient: newClient}

	rootCmd := &cobra.Command{
		Use:   "swarmnode",
		Short: "swarmnode command line tool",
		Long: `swarmnode talks to the SwarmNode API.

The API key is read from --api-key, SWARMNODE_API_KEY or api_key in
$HOME/.swarmnode.yaml, in that order.

Examples:
  swarmnode list agents --page-size 5
  swarmnode get executions 0b6f...
  swarmnode run <agent-id> --payload '{"n": 1}'
  swarmnode watch <execution-address>
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			level := slog.LevelInfo
			if a.v.GetBool(keyVerbose) {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("api-key", "", "API key (default is $SWARMNODE_API_KEY)")
	_ = a.v.BindPFlag(keyAPIKey, rootCmd.PersistentFlags().Lookup("api-key"))
	_ = a.v.BindEnv(keyAPIKey, swarmnode.APIKeyEnv)

	rootCmd.PersistentFlags().String("api-base", "", "API host (default is "+swarmnode.DefaultAPIBase+")")
	_ = a.v.BindPFlag(keyAPIBase, rootCmd.PersistentFlags().Lookup("api-base"))
	_ = a.v.BindEnv(keyAPIBase, envAPIBase)

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.swarmnode.yaml)")
	_ = a.v.BindPFlag(keyConfigFile, rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and channel events")
	_ = a.v.BindPFlag(keyVerbose, rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newRunCmd(a),
		newWatchCmd(a),
	)

	return rootCmd
}

// loadConfig reads the optional config file. A missing default file is fine.
func (a *app) loadConfig() error {
	if path := a.v.GetString(keyConfigFile); path != "" {
		a.v.SetConfigFile(path)
		return a.v.ReadInConfig()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("No home directory, skipping config file", "error", err)
		return nil
	}
	a.v.SetConfigName(".swarmnode")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(home)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// config resolves the credentials into a library config
func (a *app) config() *swarmnode.Config {
	key := a.v.GetString(keyAPIKey)
	base := a.v.GetString(keyAPIBase)

	cfg := swarmnode.NewConfig()
	cfg.Configure(swarmnode.Settings{APIKey: &key, APIBase: &base})
	return cfg
}

func (a *app) client() (*resources.Client, error) {
	return a.newClient(a.config())
}
