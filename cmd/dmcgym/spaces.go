package main

import (
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSpacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spaces",
		Short: "Print the spaces of the configured environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			c.LogPixelImages, c.LogMeasurements = false, false

			env, err := newEnv(c, zap.NewNop())
			if err != nil {
				return err
			}
			defer env.Close()

			cmd.Printf("%v %v/%v\n", aurora.Bold("Environment:"), c.Domain,
				c.Task)
			cmd.Printf("%v %v\n", aurora.Cyan("Action space:"),
				env.ActionSpace())
			cmd.Printf("%v %v\n", aurora.Cyan("True action space:"),
				env.TrueActionSpace())
			cmd.Printf("%v %v\n", aurora.Cyan("Observation space:"),
				env.ObservationSpace())
			cmd.Printf("%v %v\n", aurora.Cyan("State space:"),
				env.StateSpace())
			return nil
		},
	}
}
