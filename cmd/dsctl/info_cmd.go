package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/openmined/dsmanager/internal/catalog"
	"github.com/openmined/dsmanager/internal/server"
	"github.com/openmined/dsmanager/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type infoReport struct {
	Version  string          `json:"version" yaml:"version"`
	Root     string          `json:"root" yaml:"root"`
	Catalog  string          `json:"catalog" yaml:"catalog"`
	Datasets []catalog.Entry `json:"datasets" yaml:"datasets"`
}

func newInfoCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Refresh the catalog and summarize every dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cmd)
			if opts.ServerURL != "" {
				return fmt.Errorf("info reads the catalog directly and needs a local datasets root")
			}
			svc, err := newLocalService(cmd.Context(), opts)
			if err != nil {
				return err
			}

			cfg := &catalog.Config{
				DBPath:    server.DefaultCatalogPath(svc.Root()),
				CacheSize: catalog.DefaultCacheSize,
			}
			cat, err := catalog.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cat.Close()

			datasets, err := svc.ListDatasets()
			if err != nil {
				return err
			}
			for _, ds := range datasets {
				if _, err := cat.Images(cmd.Context(), ds); err != nil {
					slog.Warn("catalog refresh", "dataset", ds.Path, "error", err)
				}
			}

			entries, err := cat.Entries(cmd.Context())
			if err != nil {
				return err
			}
			report := &infoReport{
				Version:  version.Short(),
				Root:     svc.Root(),
				Catalog:  cfg.DBPath,
				Datasets: entries,
			}

			out := cmd.OutOrStdout()
			switch {
			case opts.JSON:
				return printJSON(out, report)
			case asYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(report); err != nil {
					return err
				}
				return enc.Close()
			}

			fmt.Fprintln(out, bold.Render("dsmanager"), report.Version)
			fmt.Fprintln(out, gray.Render("root   "), report.Root)
			fmt.Fprintln(out, gray.Render("catalog"), report.Catalog)
			for _, e := range entries {
				scanned := e.ScannedAt
				if t, err := time.Parse(time.RFC3339Nano, e.ScannedAt); err == nil {
					scanned = humanize.Time(t)
				}
				fmt.Fprintf(out, "  %-32s %8s images  %s\n", cyan.Render(e.Path), humanize.Comma(int64(e.Images)), gray.Render("scanned "+scanned))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the report as YAML")
	return cmd
}
