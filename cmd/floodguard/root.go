package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "floodguard",
		Short:        "Panchayat-level flood risk dashboard backend",
		Long:         "Seeds synthetic rainfall history for Kerala panchayats and serves risk queries, alert subscriptions and AI analysis over HTTP.",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newSeedCmd())

	// A bare invocation behaves like "serve".
	root.RunE = serve.RunE
	return root
}
