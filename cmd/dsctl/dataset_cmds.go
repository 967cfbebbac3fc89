package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List datasets under the root",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			folders, err := b.Folders(cmd.Context())
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), folders)
			}
			for _, f := range folders {
				fmt.Fprintln(cmd.OutOrStdout(), f.Path)
			}
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty dataset with img and Control1..3",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			ds, err := b.CreateDataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), ds)
			}
			fmt.Fprintln(cmd.OutOrStdout(), green.Render("created"), ds.Path)
			return nil
		},
	}
}

func newImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images <dataset>",
		Short: "List the images of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			images, err := b.Images(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), images)
			}
			for _, img := range images {
				fmt.Fprintln(cmd.OutOrStdout(), img)
			}
			return nil
		},
	}
}

func newCaptionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "caption <dataset> <filename> [text]",
		Short: "Print a caption, or replace it when text is given (empty text removes it)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := newBackend(cmd)
			if err != nil {
				return err
			}
			if len(args) == 3 {
				return b.SetCaption(cmd.Context(), args[0], args[1], args[2])
			}
			caption, err := b.Caption(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), caption)
			return nil
		},
	}
}

func newReshuffleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reshuffle <dataset>",
		Short: "Give every sample a fresh random identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			res, err := b.Reshuffle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderReshuffle(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var linked string
	cmd := &cobra.Command{
		Use:   "delete <dataset> <filename>",
		Short: "Delete a sample from every folder, and from a linked dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			res, err := b.Delete(cmd.Context(), args[0], args[1], linked)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderDelete(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&linked, "linked", "l", "", "Linked dataset holding the same sample")
	return cmd
}

func newTransferCmd() *cobra.Command {
	var target, linked string
	cmd := &cobra.Command{
		Use:   "transfer <dataset> <filename>",
		Short: "Move a sample into another dataset under a fresh identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			res, err := b.Transfer(cmd.Context(), args[0], args[1], target, linked)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderTransfer(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Dataset receiving the sample")
	cmd.Flags().StringVarP(&linked, "linked", "l", "", "Linked dataset whose same-named sample moves too")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <primary> <linked>",
		Short: "Report samples present in only one of two datasets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			res, err := b.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderCompare(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newCompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress <dataset>",
		Short: "Losslessly recompress every png of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			res, err := b.Compress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderCompress(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dataset> <dest>",
		Short: "Copy each folder to <dest>/<name>_img|_ctr1|_ctr2|_ctr3 (dest may be s3://bucket/prefix)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBackend(cmd)
			if err != nil {
				return err
			}
			res, err := b.Export(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderExport(cmd.OutOrStdout(), res)
			return nil
		},
	}
}
