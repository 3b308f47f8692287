package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "apex-inventory",
		Short:         "Inventory and point of sale API",
		SilenceUsage:  true,
		// Running without a subcommand starts the server.
		RunE: serve.RunE,
	}
	root.AddCommand(serve, newSeedAdminCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newSeedAdminCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the default admin account if no admin exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedAdmin(cmd.Context(), cmd.OutOrStdout(), username, password)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username (defaults to ADMIN_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to ADMIN_PASSWORD)")
	return cmd
}
