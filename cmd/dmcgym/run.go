package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/dmcgym/environment/dmcgym"
	"github.com/samuelfneumann/dmcgym/environment/envconfig"
	"github.com/samuelfneumann/dmcgym/experiment"
	"github.com/samuelfneumann/dmcgym/experiment/savers"
	"github.com/samuelfneumann/dmcgym/utils/progressbar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// DefaultRunDir is the root of run directories when the configuration
// has no log directory
const DefaultRunDir string = "runs"

// Files saved in each seed directory
const (
	ConfigFile  string = "config.yaml"
	ReturnsFile string = "returns.bin"
	LengthsFile string = "lengths.bin"
)

const barWidth int = 40

type runFlags struct {
	episodes int
	seeds    int
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a uniform random policy on independently seeded environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeeds(cmd, f)
		},
	}

	cmd.Flags().IntVarP(&f.episodes, "episodes", "e", 10, "episodes per seed")
	cmd.Flags().IntVarP(&f.seeds, "seeds", "s", 1, "number of seeds, run "+
		"in parallel from the configured seed onwards")
	return cmd
}

func runSeeds(cmd *cobra.Command, f runFlags) error {
	if f.episodes < 1 || f.seeds < 1 {
		return fmt.Errorf("run: episodes (%v) and seeds (%v) must be "+
			"positive", f.episodes, f.seeds)
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	root := c.LogDir
	if root == "" {
		root = DefaultRunDir
	}
	root = filepath.Join(root, uuid.New().String())
	logger.Info("starting run", zap.String("dir", root),
		zap.Int("seeds", f.seeds), zap.Int("episodes", f.episodes))

	bar := progressbar.NewProgressBar(cmd.OutOrStdout(), barWidth,
		f.seeds*f.episodes)
	returns := make([][]float64, f.seeds)

	g, ctx := errgroup.WithContext(cmd.Context())
	for i := 0; i < f.seeds; i++ {
		i := i
		seed := c.Seed() + uint64(i)
		seedConfig := envconfig.WithSeed(c, seed)
		seedConfig.LogDir = filepath.Join(root, fmt.Sprintf("seed-%d", seed))

		g.Go(func() error {
			r, err := runSeed(ctx, seedConfig, f.episodes,
				logger.With(zap.Uint64("seed", seed)), bar.Increment)
			if err != nil {
				return fmt.Errorf("run: seed %v: %v", seed, err)
			}
			returns[i] = r
			return nil
		})
	}
	err = g.Wait()
	bar.Close()
	if err != nil {
		return err
	}

	for i, r := range returns {
		mean, std := stat.MeanStdDev(r, nil)
		if len(r) < 2 {
			std = 0
		}
		cmd.Printf("%v mean return %v ± %.3f\n",
			aurora.Bold(fmt.Sprintf("seed %d:", c.Seed()+uint64(i))),
			aurora.BrightGreen(fmt.Sprintf("%.3f", mean)), std)
	}
	cmd.Println(aurora.BrightGreen(fmt.Sprintf("Saved runs in %v", root)))
	return nil
}

// runSeed runs a random agent for a number of episodes on an
// environment configured by c, saving data into c.LogDir
func runSeed(ctx context.Context, c dmcgym.Config, episodes int,
	logger *zap.Logger, onEpisode func()) ([]float64, error) {
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create run directory: %v", err)
	}
	if err := envconfig.Save(c, filepath.Join(c.LogDir, ConfigFile)); err != nil {
		return nil, err
	}

	returns := savers.NewReturn(filepath.Join(c.LogDir, ReturnsFile))
	lengths := savers.NewEpisodeLength(filepath.Join(c.LogDir, LengthsFile))
	env, err := newEnv(c, logger, dmcgym.WithObserver(returns),
		dmcgym.WithObserver(lengths))
	if err != nil {
		return nil, err
	}

	agent := experiment.NewRandom(env.ActionSpace(), c.Seed())
	exp := experiment.NewOnline(env, agent, episodes, logger)
	runErr := exp.Run(ctx, onEpisode)

	if err := env.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return exp.Returns(), runErr
}
