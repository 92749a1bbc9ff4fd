package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfslim/pdfslim/document"
	"github.com/pdfslim/pdfslim/recompress"
)

type preset struct {
	name    string
	colorQ  int
	grayQ   int
	tagline string
}

var presets = []preset{
	{"high", 60, 70, "larger file, best quality"},
	{"balanced", 45, 55, "good balance (recommended)"},
	{"compact", 30, 40, "smaller file, lower quality"},
}

var (
	compressOutput string
	colorQuality   int
	grayQuality    int
	presetName     string
	keepMetadata   bool
)

var compressCmd = &cobra.Command{
	Use:   "compress <input.pdf>",
	Short: "Recompress embedded images and strip metadata",
	Long: `Rewrites raw deflate-compressed images as JPEG and strips document
metadata. Without -o, output goes to <name>_compressed.pdf next to the input.`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompress(cmd, args[0])
	},
}

func init() {
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "output file")
	compressCmd.Flags().IntVar(&colorQuality, "color-quality", 0, "JPEG quality for color images (1-100)")
	compressCmd.Flags().IntVar(&grayQuality, "gray-quality", 0, "JPEG quality for grayscale images (1-100)")
	compressCmd.Flags().StringVar(&presetName, "preset", "", "quality preset: high, balanced, or compact")
	compressCmd.Flags().BoolVar(&keepMetadata, "keep-metadata", false, "do not strip the Info dictionary and XMP stream")
	rootCmd.AddCommand(compressCmd)
}

// resolveQualities decides the color and grayscale qualities from flags, the
// chosen preset, or an interactive prompt when nothing was specified and stdin
// is a terminal.
func resolveQualities(cmd *cobra.Command) (int, int, error) {
	if presetName != "" {
		for _, p := range presets {
			if p.name == presetName {
				return p.colorQ, p.grayQ, nil
			}
		}
		return 0, 0, &usageError{fmt.Errorf("unknown preset %q", presetName)}
	}

	def := recompress.DefaultConfig()
	cq, gq := def.ColorQuality, def.GrayscaleQuality
	flagged := false
	if colorQuality > 0 {
		cq, flagged = colorQuality, true
	}
	if grayQuality > 0 {
		gq, flagged = grayQuality, true
	}
	if flagged {
		return cq, gq, nil
	}

	if fi, err := os.Stdin.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return cq, gq, nil
	}
	return promptPreset(cmd)
}

func promptPreset(cmd *cobra.Command) (int, int, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Choose quality level:")
	for i, p := range presets {
		fmt.Fprintf(out, "  %d. %s (color %d, grayscale %d) - %s\n", i+1, p.name, p.colorQ, p.grayQ, p.tagline)
	}
	fmt.Fprint(out, "Selection [2]: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return presets[1].colorQ, presets[1].grayQ, nil
	}
	switch strings.TrimSpace(line) {
	case "1":
		return presets[0].colorQ, presets[0].grayQ, nil
	case "", "2":
		return presets[1].colorQ, presets[1].grayQ, nil
	case "3":
		return presets[2].colorQ, presets[2].grayQ, nil
	}
	fmt.Fprintln(out, "Unrecognized choice, using balanced.")
	return presets[1].colorQ, presets[1].grayQ, nil
}

func runCompress(cmd *cobra.Command, inFile string) error {
	cq, gq, err := resolveQualities(cmd)
	if err != nil {
		return err
	}

	outFile := compressOutput
	if outFile == "" {
		ext := filepath.Ext(inFile)
		outFile = strings.TrimSuffix(inFile, ext) + "_compressed" + ext
	}

	fi, err := os.Stat(inFile)
	if err != nil {
		return err
	}
	originalSize := fi.Size()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processing %s (%s)\n", inFile, humanSize(originalSize))
	fmt.Fprintf(out, "Color quality %d, grayscale quality %d\n", cq, gq)

	session, err := document.Open(inFile)
	if err != nil {
		return err
	}

	p := recompress.New(recompress.Config{
		ColorQuality:     cq,
		GrayscaleQuality: gq,
		Logger:           newConsoleLogger(cmd.ErrOrStderr(), verbose),
	})
	stats, err := p.Run(cmd.Context(), session.Walk())
	if err != nil {
		return err
	}

	if !keepMetadata {
		session.StripMetadata()
	}
	if err := session.Save(outFile); err != nil {
		return err
	}

	fi2, err := os.Stat(outFile)
	if err != nil {
		return err
	}
	newSize := fi2.Size()

	fmt.Fprintf(out, "Images: %d seen, %d recompressed\n", stats.Seen, stats.Committed)
	for reason, n := range stats.Skipped {
		fmt.Fprintf(out, "  skipped %d (%s)\n", n, reason)
	}
	saved := originalSize - newSize
	pct := 0.0
	if originalSize > 0 {
		pct = float64(saved) / float64(originalSize) * 100
	}
	fmt.Fprintf(out, "%s -> %s (saved %s, %.1f%%)\n", humanSize(originalSize), humanSize(newSize), humanSize(saved), pct)
	fmt.Fprintf(out, "Wrote %s\n", outFile)
	return nil
}
