package main

import (
	"github.com/spf13/cobra"

	"github.com/AlibekovAA/authd/internal/common/config"
)

type rootOptions struct {
	configFile string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "authd",
		Short: "authd - account registration, login and bearer tokens",
		Long: `authd registers accounts with hashed passwords, verifies logins and
issues signed bearer tokens over a small JSON HTTP API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewUserCmd(opts))

	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) (config.AuthConfig, error) {
	return config.LoadAuthConfig(o.configFile, cmd.Flags())
}
