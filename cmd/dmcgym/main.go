// Command dmcgym runs and inspects adapted control environments
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logFile    string
	verbose    bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dmcgym",
		Short:         "Run and inspect gym-style adapted control environments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration "+
		"file, DMCGYM_ environment variables override its keys")
	flags.StringVar(&logFile, "log-file", "", "write JSON logs to this "+
		"rotated file instead of the console")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(newRunCmd(), newSpacesCmd(), newInitCmd())
	return rootCmd
}

func main() {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln(errorText(err))
		stop()
		os.Exit(1)
	}
}
