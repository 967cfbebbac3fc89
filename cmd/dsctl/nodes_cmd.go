package main

import (
	"fmt"
	"image"

	"github.com/dustin/go-humanize"
	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/nodes"
	"github.com/openmined/dsmanager/internal/server"
	"github.com/spf13/cobra"
)

func newNodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Run the save and load nodes of an image pipeline",
	}
	cmd.AddCommand(newNodeSaveCmd(), newNodeLoadCmd())
	return cmd
}

func newNodeSaveCmd() *cobra.Command {
	var (
		datasetName string
		target      string
		controls    [3]string
		caption     string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Append a target image, its controls and caption as the next image_NNNNN.png entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cmd)

			in := nodes.SaveInput{Dataset: datasetName, Caption: caption}
			img, err := nodes.DecodeFile(target)
			if err != nil {
				return err
			}
			in.Target = img

			slots := []*image.Image{&in.Control1, &in.Control2, &in.Control3}
			for i, path := range controls {
				if path == "" {
					continue
				}
				ctrl, err := nodes.DecodeFile(path)
				if err != nil {
					return err
				}
				*slots[i] = ctrl
			}

			saver := nodes.NewSaver(opts.Root, dataset.NewLockManager(true, server.DefaultLockTimeout))
			res, err := saver.Save(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), green.Render("saved"), cyan.Render(res.Dataset+"/"+res.Filename))
			for _, w := range res.Written {
				fmt.Fprintln(cmd.OutOrStdout(), " ", w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetName, "dataset", "", "Dataset name under the datasets root")
	cmd.Flags().StringVar(&target, "target", "", "Target image file")
	cmd.Flags().StringVar(&controls[0], "control1", "", "Control1 image file")
	cmd.Flags().StringVar(&controls[1], "control2", "", "Control2 image file")
	cmd.Flags().StringVar(&controls[2], "control3", "", "Control3 image file")
	cmd.Flags().StringVar(&caption, "caption", "", "Caption text")
	cmd.MarkFlagRequired("dataset")
	cmd.MarkFlagRequired("target")
	return cmd
}

type loadedItem struct {
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Caption  string `json:"caption"`
}

func newNodeLoadCmd() *cobra.Command {
	var (
		path     string
		mode     string
		filename string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load dataset entries back as decoded images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cmd)

			items, err := nodes.NewLoader(opts.Root).Load(nodes.LoadInput{
				DatasetPath:    path,
				Mode:           nodes.Mode(mode),
				ManualFilename: filename,
			})
			if err != nil {
				return err
			}

			loaded := make([]loadedItem, 0, len(items))
			for _, it := range items {
				b := it.Target.Bounds()
				loaded = append(loaded, loadedItem{Filename: it.Filename, Width: b.Dx(), Height: b.Dy(), Caption: it.Caption})
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), loaded)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s items\n", green.Render("loaded"), humanize.Comma(int64(len(loaded))))
			for _, it := range loaded {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s\n", it.Filename, gray.Render(fmt.Sprintf("%dx%d", it.Width, it.Height)), it.Caption)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Dataset path, absolute or relative to the datasets root")
	cmd.Flags().StringVar(&mode, "mode", string(nodes.ModeList), "Selection mode: List or Manual")
	cmd.Flags().StringVar(&filename, "file", "", "Filename to load in Manual mode")
	cmd.MarkFlagRequired("path")
	return cmd
}
