package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/floodguard/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var seedValue uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate the database and seed it if empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.newSeeder(seed.NewRand(seedValue)).SeedIfEmpty(cmd.Context())
			if err != nil {
				a.logger.Error("seeding failed", "error", err)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), describe(res))
			return err
		},
	}
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed for reproducible data (0 draws a random seed)")
	return cmd
}
