package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/dsmanager/internal/blob"
	"github.com/openmined/dsmanager/internal/server"
	"github.com/openmined/dsmanager/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options are the persistent settings shared by every command.
type options struct {
	Root      string
	ServerURL string
	Token     string
	Seed      uint64
	JSON      bool
	S3        blob.S3Config
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dsctl",
		Short:         "Manage paired image datasets",
		Version:       version.Detailed(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringP("datasets", "d", server.DefaultDatasetsDir, "Datasets root directory")
	pf.StringP("server", "s", "", "Use a running server instead of the local datasets root")
	pf.String("token", "", "API token for --server")
	pf.Uint64("seed", 0, "Seed for identifier generation, 0 picks a random one")
	pf.Bool("json", false, "Print results as JSON")

	root.AddCommand(
		newListCmd(),
		newCreateCmd(),
		newImagesCmd(),
		newCaptionCmd(),
		newReshuffleCmd(),
		newDeleteCmd(),
		newTransferCmd(),
		newCompareCmd(),
		newCompressCmd(),
		newExportCmd(),
		newInfoCmd(),
		newNodesCmd(),
		newVersionCmd(),
	)
	return root
}

// loadOptions resolves flags and DSMANAGER_* env vars; flags win.
func loadOptions(cmd *cobra.Command) *options {
	v := viper.New()
	v.SetEnvPrefix("DSMANAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindPFlag("datasets.root", cmd.Flags().Lookup("datasets"))
	v.BindPFlag("server_url", cmd.Flags().Lookup("server"))
	v.BindPFlag("http.api_token", cmd.Flags().Lookup("token"))
	v.BindPFlag("seed", cmd.Flags().Lookup("seed"))
	v.BindPFlag("json", cmd.Flags().Lookup("json"))

	return &options{
		Root:      v.GetString("datasets.root"),
		ServerURL: v.GetString("server_url"),
		Token:     v.GetString("http.api_token"),
		Seed:      v.GetUint64("seed"),
		JSON:      v.GetBool("json"),
		S3: blob.S3Config{
			Region:        v.GetString("s3.region"),
			AccessKey:     v.GetString("s3.access_key"),
			SecretKey:     v.GetString("s3.secret_key"),
			Endpoint:      v.GetString("s3.endpoint"),
			UseAccelerate: v.GetBool("s3.use_accelerate"),
		},
	}
}

func main() {
	// results go to stdout, logs to stderr
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
