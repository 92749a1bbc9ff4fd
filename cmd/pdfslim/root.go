package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pdfslim",
	Short: "Shrink PDFs by recompressing their embedded images",
	Long: `pdfslim rewrites raw deflate-compressed images inside a PDF as JPEG,
keeping grayscale images grayscale and flattening transparency onto white.
Images are only replaced when the re-encoding saves more than ten percent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// usageError marks errors that should exit with the usage status code.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exactArgs is cobra.ExactArgs with the usage-error marker attached.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{fmt.Errorf("expected %d argument(s), got %d", n, len(args))}
		}
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-image decisions")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
