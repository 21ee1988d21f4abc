// Command tafconv converts GeoWeb TAF JSON files offline, using the same
// engine as the streaming service.
//
// Usage:
//
//	tafconv convert testdata/taf_valid.json --format yaml
//	tafconv validate testdata/*.json --strict
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tafconv",
		Short: "Convert and validate TAF documents",
		Long: `tafconv runs GeoWeb TAF JSON documents through the forecast conversion
engine and prints the converted report or a validation summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(), newValidateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
