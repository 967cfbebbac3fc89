package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/dsmanager/internal/catalog"
	"github.com/openmined/dsmanager/internal/server"
	"github.com/openmined/dsmanager/internal/utils"
	"github.com/openmined/dsmanager/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "DSMANAGER"
	configFileName = "dsmanager"
	logFileName    = "server.log"
)

var home, _ = os.UserHomeDir()

var rootCmd = &cobra.Command{
	Use:     "dsmanager-server",
	Short:   "Dataset manager HTTP server",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		if cfg.LogDir != "" {
			closeLog, err := addFileLogger(cfg.LogDir)
			if err != nil {
				return err
			}
			defer closeLog()
		}

		srv, err := server.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer slog.Info("Bye!")
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	rootCmd.Flags().StringP("datasets", "d", server.DefaultDatasetsDir, "Datasets root directory")
	rootCmd.Flags().String("cert", "", "Path to the TLS certificate file")
	rootCmd.Flags().String("key", "", "Path to the TLS key file")
	rootCmd.Flags().String("static", "", "Directory with the web UI to serve at /")
	rootCmd.Flags().String("log-dir", "", "Also write logs to <dir>/"+logFileName)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (yaml or json)")
}

// loadConfig merges defaults, the config file, flags and DSMANAGER_* env vars,
// in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*server.Config, error) {
	v := viper.New()

	if f := cmd.Flag("config"); f != nil && f.Changed {
		v.SetConfigFile(f.Value.String())
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", "dsmanager"))
	}

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	setDefaults(v)

	v.BindPFlag("http.addr", cmd.Flags().Lookup("bind"))
	v.BindPFlag("http.cert_file", cmd.Flags().Lookup("cert"))
	v.BindPFlag("http.key_file", cmd.Flags().Lookup("key"))
	v.BindPFlag("http.static_dir", cmd.Flags().Lookup("static"))
	v.BindPFlag("datasets.root", cmd.Flags().Lookup("datasets"))
	v.BindPFlag("log_dir", cmd.Flags().Lookup("log-dir"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg server.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	return &cfg, nil
}

// every key needs a default so AutomaticEnv can find it during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", server.DefaultAddr)
	v.SetDefault("http.cert_file", "")
	v.SetDefault("http.key_file", "")
	v.SetDefault("http.static_dir", "")
	v.SetDefault("http.rate_limit", server.DefaultRateLimit)
	v.SetDefault("http.api_token", "")

	v.SetDefault("datasets.root", server.DefaultDatasetsDir)
	v.SetDefault("datasets.lock_enabled", true)
	v.SetDefault("datasets.lock_timeout", server.DefaultLockTimeout)
	v.SetDefault("datasets.workers", 0)

	v.SetDefault("catalog.db_path", "")
	v.SetDefault("catalog.cache_size", catalog.DefaultCacheSize)
	v.SetDefault("catalog.cache_ttl", catalog.DefaultCacheTTL)

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_accelerate", false)

	v.SetDefault("log_dir", "")
}

var stdoutHandler = tint.NewHandler(os.Stdout, &tint.Options{
	Level:      slog.LevelDebug,
	TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
})

// addFileLogger tees the default logger into <dir>/server.log.
func addFileLogger(dir string) (func(), error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logInterceptor := utils.NewLogInterceptor(file)
	fileHandler := slog.NewTextHandler(logInterceptor, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// the interceptor stamps each line itself
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler)))
	return func() {
		logInterceptor.Close()
		file.Close()
	}, nil
}

func main() {
	slog.SetDefault(slog.New(stdoutHandler))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
