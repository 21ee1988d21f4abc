package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/taf-iwxxm-etl/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConvertCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert TAF files and print the converted reports",
		Long: `Convert each TAF JSON file and print the envelope {id, report, issues}.
Conversion issues are part of the output and do not fail the command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}
			return runConvert(cmd.OutOrStdout(), args, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func runConvert(out io.Writer, paths []string, format string) error {
	var enc interface{ Encode(v any) error }
	switch format {
	case "yaml":
		ye := yaml.NewEncoder(out)
		ye.SetIndent(2)
		defer ye.Close()
		enc = yamlEncoder{ye}
	default:
		je := json.NewEncoder(out)
		je.SetIndent("", "  ")
		enc = je
	}

	for _, path := range paths {
		msg, err := convertFile(path)
		if err != nil {
			return err
		}
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	return nil
}

func convertFile(path string) (domain.ConvertedMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ConvertedMessage{}, fmt.Errorf("read %s: %w", path, err)
	}
	taf, err := domain.ParseTAF(data)
	if err != nil {
		return domain.ConvertedMessage{}, fmt.Errorf("%s: %w", path, err)
	}
	return domain.NewConvertedMessage(taf, domain.Convert(taf)), nil
}

// yamlEncoder routes values through their JSON form so YAML output uses the
// same field names and time formats as the published messages.
type yamlEncoder struct {
	enc *yaml.Encoder
}

func (y yamlEncoder) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	return y.enc.Encode(generic)
}
