package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/openmined/dsmanager/internal/blob"
	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/dsclient"
	"github.com/openmined/dsmanager/internal/server"
	"github.com/spf13/cobra"
)

// backend runs dataset operations either in process or against a server.
// Both report results in the server's wire shape.
type backend interface {
	Folders(ctx context.Context) ([]*dsclient.Dataset, error)
	CreateDataset(ctx context.Context, name string) (*dsclient.Dataset, error)
	Images(ctx context.Context, folder string) ([]string, error)
	Caption(ctx context.Context, folder, filename string) (string, error)
	SetCaption(ctx context.Context, folder, filename, caption string) error
	Delete(ctx context.Context, folder, filename, linkedFolder string) (*dsclient.DeleteResult, error)
	Transfer(ctx context.Context, folder, filename, targetFolder, linkedFolder string) (*dsclient.TransferResult, error)
	Reshuffle(ctx context.Context, folder string) (*dsclient.ReshuffleResult, error)
	Compare(ctx context.Context, primaryFolder, linkedFolder string) (*dsclient.CompareResult, error)
	Compress(ctx context.Context, folder string) (*dsclient.CompressResult, error)
	Export(ctx context.Context, folder, exportPath string) (*dsclient.ExportResult, error)
}

var _ backend = (*dsclient.Client)(nil)
var _ backend = (*localBackend)(nil)

func newBackend(cmd *cobra.Command) (backend, *options, error) {
	opts := loadOptions(cmd)
	if opts.ServerURL != "" {
		c, err := dsclient.New(opts.ServerURL, dsclient.WithToken(opts.Token))
		if err != nil {
			return nil, nil, err
		}
		return c, opts, nil
	}

	svc, err := newLocalService(cmd.Context(), opts)
	if err != nil {
		return nil, nil, err
	}
	return &localBackend{svc: svc}, opts, nil
}

func newLocalService(ctx context.Context, opts *options) (*dataset.DatasetService, error) {
	svcOpts := []dataset.Option{
		dataset.WithLockManager(dataset.NewLockManager(true, server.DefaultLockTimeout)),
	}
	if opts.S3.Enabled() {
		if err := opts.S3.Validate(); err != nil {
			return nil, err
		}
		uploader, err := blob.NewUploaderWithConfig(ctx, &opts.S3)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, dataset.WithUploader(uploader))
	}
	if opts.Seed != 0 {
		svcOpts = append(svcOpts, dataset.WithNameGenerator(dataset.NewSeededNameGenerator(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)))
	}
	return dataset.NewDatasetService(opts.Root, svcOpts...)
}

type localBackend struct {
	svc *dataset.DatasetService
}

// wire converts a service result into its client-side counterpart.
func wire[T any](res any) (*T, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("convert result: %w", err)
	}
	return &out, nil
}

func (b *localBackend) Folders(_ context.Context) ([]*dsclient.Dataset, error) {
	return b.svc.ListDatasets()
}

func (b *localBackend) CreateDataset(_ context.Context, name string) (*dsclient.Dataset, error) {
	return b.svc.CreateDataset(name)
}

func (b *localBackend) Images(_ context.Context, folder string) ([]string, error) {
	ds, err := b.svc.Resolve(folder)
	if err != nil {
		return nil, err
	}
	return dataset.ListImages(ds)
}

func (b *localBackend) Caption(_ context.Context, folder, filename string) (string, error) {
	ds, err := b.svc.Resolve(folder)
	if err != nil {
		return "", err
	}
	return b.svc.Caption(ds, filename)
}

func (b *localBackend) SetCaption(ctx context.Context, folder, filename, caption string) error {
	ds, err := b.svc.Resolve(folder)
	if err != nil {
		return err
	}
	return b.svc.SetCaption(ctx, ds, filename, caption)
}

func (b *localBackend) Delete(ctx context.Context, folder, filename, linkedFolder string) (*dsclient.DeleteResult, error) {
	res, err := b.svc.Delete(ctx, folder, filename, linkedFolder)
	if err != nil {
		return nil, err
	}
	return wire[dsclient.DeleteResult](res)
}

func (b *localBackend) Transfer(ctx context.Context, folder, filename, targetFolder, linkedFolder string) (*dsclient.TransferResult, error) {
	res, err := b.svc.Transfer(ctx, dataset.TransferParams{
		Source:   folder,
		Target:   targetFolder,
		Linked:   linkedFolder,
		Filename: filename,
	})
	if err != nil {
		return nil, err
	}
	return wire[dsclient.TransferResult](res)
}

func (b *localBackend) Reshuffle(ctx context.Context, folder string) (*dsclient.ReshuffleResult, error) {
	res, err := b.svc.Reshuffle(ctx, folder)
	if err != nil {
		return nil, err
	}
	return wire[dsclient.ReshuffleResult](res)
}

func (b *localBackend) Compare(_ context.Context, primaryFolder, linkedFolder string) (*dsclient.CompareResult, error) {
	return b.svc.Compare(primaryFolder, linkedFolder)
}

func (b *localBackend) Compress(ctx context.Context, folder string) (*dsclient.CompressResult, error) {
	res, err := b.svc.Compress(ctx, folder)
	if err != nil {
		return nil, err
	}
	return wire[dsclient.CompressResult](res)
}

func (b *localBackend) Export(ctx context.Context, folder, exportPath string) (*dsclient.ExportResult, error) {
	res, err := b.svc.Export(ctx, folder, exportPath)
	if err != nil {
		return nil, err
	}
	return wire[dsclient.ExportResult](res)
}
