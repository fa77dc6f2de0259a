package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/guimove/trainfit/internal/cache"
	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/orchestrator"
	"github.com/guimove/trainfit/internal/report"
	"github.com/guimove/trainfit/internal/snapshot"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign parcels to trains from a snapshot file",
	Long: `Reads a snapshot file (JSON, or YAML by extension) holding carriers and
units and prints the cheapest assignment found, without touching any
database. The JSON output of 'trainfit inspect --output json' is a valid
input. Results are cached on disk by snapshot fingerprint;
--clear-cache empties that cache first.`,
	RunE: runAssign,
}

func init() {
	f := assignCmd.Flags()
	f.String("input", "", "path to snapshot file (required)")
	f.String("output", "table", "output format: table, json, markdown")
	f.Bool("enforce-volume", true, "repair packings that overflow a train's volume")
	f.Bool("no-cache", false, "disable the result cache")
	f.Bool("clear-cache", false, "remove cached results before assigning")

	_ = assignCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if f, _ := cmd.Flags().GetString("output"); cmd.Flags().Changed("output") {
		cfg.Output.Format = f
	}
	if ev, _ := cmd.Flags().GetBool("enforce-volume"); cmd.Flags().Changed("enforce-volume") {
		cfg.Optimizer.EnforceVolume = ev
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	src := snapshot.NewFileSource(inputPath)
	if err := src.Ping(ctx); err != nil {
		return err
	}
	snap, err := src.Load(ctx)
	if err != nil {
		return err
	}

	orch := newOrchestrator(nil, nil, nil)

	fc := cache.NewFileCache(cacheDir())
	if wipe, _ := cmd.Flags().GetBool("clear-cache"); wipe {
		if err := fc.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		logger.Info().Str("dir", cacheDir()).Msg("result cache cleared")
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		fc = nil
	}

	res, err := assignCached(ctx, orch, fc, cfg.Cache.TTL, snap, logger)
	if err != nil {
		return err
	}

	reporter := report.NewReporter(cfg.Output.Format, os.Stdout)
	return reporter.Report(ctx, res, report.MetaFromSnapshot(snap, src.BackendType(), orch.Optimizer.Name()))
}

// assignCached optimizes snap, reading and writing results through fc when
// it is non-nil. Snapshots that cannot be fingerprinted bypass the cache.
func assignCached(ctx context.Context, orch *orchestrator.Orchestrator, fc *cache.FileCache, ttl time.Duration, snap model.Snapshot, log zerolog.Logger) (*model.Result, error) {
	var key string
	if fc != nil {
		k, err := cache.Fingerprint(snap, orch.Optimizer.Options())
		if err != nil {
			log.Debug().Err(err).Msg("snapshot not cacheable")
		} else {
			key = k
		}
	}

	var res *model.Result
	if key != "" && fc.Get(key, ttl, &res) && res != nil {
		log.Info().Str("fingerprint", key[:12]).Msg("using cached assignment")
		return res, nil
	}
	res, err := orch.Optimize(ctx, snap)
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := fc.Set(key, res); err != nil {
			log.Warn().Err(err).Msg("caching assignment failed")
		}
	}
	return res, nil
}
