package main

import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/dmcgym/environment/envconfig"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		out  string
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := envconfig.WithSeed(envconfig.Default(), seed)
			if err := envconfig.Save(c, out); err != nil {
				return err
			}
			cmd.Println(aurora.BrightGreen(fmt.Sprintf("Initialized %v", out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "dmcgym.yaml", "file to write")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed of the task")
	return cmd
}
