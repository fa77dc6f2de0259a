package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guimove/trainfit/internal/config"
	"github.com/guimove/trainfit/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  zerolog.Logger
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "trainfit",
	Short: "Cost-minimizing parcel to train assignment",
	Long: `Trainfit assigns parcels to trains so that every parcel fits within the
weight and volume capacity of its train and the summed cost of the trains
used is as low as possible.

It runs offline against snapshot files, or as an HTTP service that keeps
trains and parcels in a database and fills and books them on request.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: trainfit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	// Global flags that map to config
	rootCmd.PersistentFlags().String("db-driver", "", "store driver: memory, postgres, sqlite")
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL for event fan-out (empty = in-process)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json, console")
	rootCmd.PersistentFlags().Float64("resolution", 0, "quantization steps per unit of weight and volume")

	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("dsn"))
	_ = viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis-url"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("optimizer.resolution", rootCmd.PersistentFlags().Lookup("resolution"))
}

func loadConfig() error {
	// Start with defaults
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trainfit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.trainfit")
	}

	// Environment variable overrides, e.g. TRAINFIT_DATABASE_DSN
	viper.SetEnvPrefix("TRAINFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(cfg)

	// Read config file (not an error if missing)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// setDefaults registers every config key with viper. Keys viper does not
// know are invisible to AutomaticEnv, and unchanged bound flags would
// otherwise override the defaults with their zero values.
func setDefaults(c config.Config) {
	for key, v := range map[string]any{
		"env":                        c.Env,
		"server.addr":                c.Server.Addr,
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
		"server.rate_limit":          c.Server.RateLimit,
		"server.rate_burst":          c.Server.RateBurst,
		"database.driver":            c.Database.Driver,
		"database.dsn":               c.Database.DSN,
		"database.migrate":           c.Database.Migrate,
		"redis.url":                  c.Redis.URL,
		"redis.channel":              c.Redis.Channel,
		"optimizer.resolution":       c.Optimizer.Resolution,
		"optimizer.max_quantity":     c.Optimizer.MaxQuantity,
		"optimizer.max_table_cells":  c.Optimizer.MaxTableCells,
		"optimizer.max_probes":       c.Optimizer.MaxProbes,
		"optimizer.enforce_volume":   c.Optimizer.EnforceVolume,
		"cache.size":                 c.Cache.Size,
		"cache.dir":                  c.Cache.Dir,
		"cache.ttl":                  c.Cache.TTL,
		"log.level":                  c.Log.Level,
		"log.format":                 c.Log.Format,
		"output.format":              c.Output.Format,
	} {
		viper.SetDefault(key, v)
	}
}
