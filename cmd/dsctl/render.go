package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/openmined/dsmanager/internal/dsclient"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printFileErrors(w io.Writer, errs []*dsclient.FileError) {
	for _, e := range errs {
		if e.Op == "read" {
			fmt.Fprintln(w, " ", gray.Render("- "+e.Message))
			continue
		}
		fmt.Fprintln(w, " ", red.Render("✗ "+e.Message))
	}
}

func renderDelete(w io.Writer, res *dsclient.DeleteResult) {
	fmt.Fprintf(w, "%s %d files\n", green.Render("deleted"), len(res.Deleted))
	for _, d := range res.Deleted {
		fmt.Fprintln(w, " ", d)
	}
	printFileErrors(w, res.Errors)
}

func renderTransferLeg(w io.Writer, label string, leg *dsclient.TransferLeg) {
	if leg == nil {
		return
	}
	fmt.Fprintf(w, "%s %s %s %s (%d files)\n", bold.Render(label), leg.Filename, gray.Render("→"), cyan.Render(leg.NewFilename), len(leg.Moved))
	for _, m := range leg.Moved {
		fmt.Fprintf(w, "  %s %s %s\n", m.From, gray.Render("→"), m.To)
	}
	printFileErrors(w, leg.Errors)
}

func renderTransfer(w io.Writer, res *dsclient.TransferResult) {
	fmt.Fprintf(w, "%s into %s\n", green.Render("transferred"), cyan.Render(res.Target))
	renderTransferLeg(w, "primary", res.Primary)
	renderTransferLeg(w, "linked", res.Linked)
}

func renderReshuffle(w io.Writer, res *dsclient.ReshuffleResult) {
	fmt.Fprintf(w, "%s %d samples, %d files renamed\n", green.Render("reshuffled"), res.Count, res.FilesRenamed)
	olds := make([]string, 0, len(res.Renames))
	for old := range res.Renames {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	for _, old := range olds {
		fmt.Fprintf(w, "  %s %s %s\n", old, gray.Render("→"), res.Renames[old])
	}
	printFileErrors(w, res.Errors)
}

func renderCompare(w io.Writer, res *dsclient.CompareResult) {
	fmt.Fprintf(w, "%s %d\n", bold.Render("orphans"), len(res.Orphans))
	for _, f := range res.Orphans {
		fmt.Fprintln(w, " ", f)
	}
	fmt.Fprintf(w, "%s %d\n", bold.Render("missing"), len(res.Missing))
	for _, f := range res.Missing {
		fmt.Fprintln(w, " ", f)
	}
}

func renderCompress(w io.Writer, res *dsclient.CompressResult) {
	fmt.Fprintf(w, "%s %d of %d png files\n", green.Render("compressed"), res.Compressed, res.Scanned)
	fmt.Fprintf(w, "  %s %s %s (saved %s, %.2f%%)\n",
		humanize.IBytes(uint64(res.OriginalBytes)), gray.Render("→"), humanize.IBytes(uint64(res.NewBytes)),
		humanize.IBytes(uint64(res.OriginalBytes-res.NewBytes)), res.SavingsPercent)
	printFileErrors(w, res.Errors)
}

func renderExport(w io.Writer, res *dsclient.ExportResult) {
	fmt.Fprintf(w, "%s to %s\n", green.Render("exported"), cyan.Render(res.ExportPath))
	names := make([]string, 0, len(res.Exported))
	for name := range res.Exported {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := res.Exported[name]
		fmt.Fprintf(w, "  %-24s %s files %s\n", name, humanize.Comma(int64(f.Files)), gray.Render(f.Path))
	}
	printFileErrors(w, res.Errors)
}
