package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openmined/dsmanager/internal/blob"
	"github.com/openmined/dsmanager/internal/catalog"
	"github.com/openmined/dsmanager/internal/dataset"
)

type Services struct {
	Dataset  *dataset.DatasetService
	Catalog  *catalog.Catalog
	Uploader *blob.Uploader
}

func NewServices(ctx context.Context, config *Config) (*Services, error) {
	opts := []dataset.Option{
		dataset.WithLockManager(dataset.NewLockManager(config.Datasets.LockEnabled, config.Datasets.LockTimeout)),
	}
	if config.Datasets.Workers > 0 {
		opts = append(opts, dataset.WithWorkers(config.Datasets.Workers))
	}

	var uploader *blob.Uploader
	if config.S3.Enabled() {
		u, err := blob.NewUploaderWithConfig(ctx, &config.S3)
		if err != nil {
			return nil, fmt.Errorf("create s3 uploader: %w", err)
		}
		uploader = u
		opts = append(opts, dataset.WithUploader(u))
		slog.Info("s3 export enabled", "s3", &config.S3)
	}

	datasetSvc, err := dataset.NewDatasetService(config.Datasets.Root, opts...)
	if err != nil {
		return nil, err
	}

	catalogSvc, err := catalog.Open(ctx, &config.Catalog)
	if err != nil {
		return nil, err
	}
	datasetSvc.OnChange(func(ds *dataset.Dataset) {
		catalogSvc.Invalidate(ds.Path)
	})

	return &Services{
		Dataset:  datasetSvc,
		Catalog:  catalogSvc,
		Uploader: uploader,
	}, nil
}

// Start warms the catalog with every dataset found under the root.
func (s *Services) Start(ctx context.Context) error {
	datasets, err := s.Dataset.ListDatasets()
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}

	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.Catalog.Images(ctx, ds); err != nil {
			slog.Warn("catalog warm", "dataset", ds.Path, "error", err)
		}
	}
	slog.Info("catalog ready", "root", s.Dataset.Root(), "datasets", len(datasets))
	return nil
}

func (s *Services) Shutdown(ctx context.Context) error {
	if err := s.Catalog.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	return nil
}
