package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdfslim/pdfslim/analyze"
	"github.com/pdfslim/pdfslim/document"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.pdf>",
	Short: "Inspect a PDF and explain its compression potential",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, inFile string) error {
	fi, err := os.Stat(inFile)
	if err != nil {
		return err
	}

	session, err := document.Open(inFile)
	if err != nil {
		return err
	}
	report, err := analyze.Analyze(session)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File: %s (%s)\n", inFile, humanSize(fi.Size()))
	fmt.Fprintf(out, "Pages: %d\n", report.Pages)
	fmt.Fprintf(out, "Metadata entries: %d", report.MetadataEntries)
	if report.HasXMP {
		fmt.Fprint(out, " (plus XMP stream)")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Images: %d (%s of stream data)\n", len(report.Images), humanSize(report.ImageBytes))
	const maxListed = 10
	for i, img := range report.Images {
		if i == maxListed {
			fmt.Fprintf(out, "  ... and %d more\n", len(report.Images)-maxListed)
			break
		}
		marker := " "
		if img.Eligible {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s page %d %s: %dx%d %s %s\n",
			marker, img.Page, img.Name, img.Width, img.Height, img.Filter, humanSize(int64(img.StreamBytes)))
	}
	if report.Eligible > 0 {
		fmt.Fprintln(out, "  (* eligible for recompression)")
	}

	if len(report.Notes) > 0 {
		fmt.Fprintln(out, "Diagnosis:")
		for _, n := range report.Notes {
			fmt.Fprintf(out, "  - %s\n", n)
		}
	}
	return nil
}
