package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/taf-iwxxm-etl/internal/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that TAF files parse and convert cleanly",
		Long: `Run each TAF JSON file through parse, convert, and serialize phases and
print a pass/fail summary. With --strict any conversion issue fails the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := runValidate(cmd.OutOrStdout(), args, strict)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on any conversion issue")
	return cmd
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// runValidate validates each file and returns how many failed.
func runValidate(out io.Writer, paths []string, strict bool) int {
	fmt.Fprintln(out, "=== TAF Validation ===")

	failed := 0
	for _, path := range paths {
		phases := validateFile(path, strict)

		fmt.Fprintf(out, "\n%s\n", filepath.Base(path))
		ok := true
		for _, p := range phases {
			status := "\033[32mPASS\033[0m"
			if !p.passed() {
				status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
				ok = false
			}
			fmt.Fprintf(out, "  %-12s %s\n", p.name, status)
			for _, e := range p.errors {
				fmt.Fprintf(out, "    - %s\n", e)
			}
		}
		if !ok {
			failed++
		}
	}

	fmt.Fprintf(out, "\n%d files, %d failed\n", len(paths), failed)
	return failed
}

// validateFile stops at the first failed phase; later phases need its output.
func validateFile(path string, strict bool) []*phase {
	parse := &phase{name: "parse"}
	data, err := os.ReadFile(path)
	if err != nil {
		parse.errorf("read: %v", err)
		return []*phase{parse}
	}
	taf, err := domain.ParseTAF(data)
	if err != nil {
		parse.errorf("%v", err)
		return []*phase{parse}
	}

	convert := &phase{name: "convert"}
	res := domain.Convert(taf)
	if strict {
		for _, issue := range res.Issues {
			convert.errorf("%s", issue)
		}
	}

	return []*phase{parse, convert, checkSerialization(taf, res)}
}

// checkSerialization verifies that the envelope encodes, decodes back to the
// same report, and that converting again yields identical bytes.
func checkSerialization(taf domain.TAF, res domain.Result) *phase {
	p := &phase{name: "serialize"}

	first, err := json.Marshal(domain.NewConvertedMessage(taf, res))
	if err != nil {
		p.errorf("marshal: %v", err)
		return p
	}

	var decoded domain.ConvertedMessage
	if err := json.Unmarshal(first, &decoded); err != nil {
		p.errorf("unmarshal: %v", err)
		return p
	}
	again, err := json.Marshal(decoded)
	if err != nil {
		p.errorf("re-marshal: %v", err)
		return p
	}
	if !bytes.Equal(first, again) {
		p.errorf("envelope does not survive a decode/encode round trip")
	}

	second, err := json.Marshal(domain.NewConvertedMessage(taf, domain.Convert(taf)))
	if err != nil {
		p.errorf("marshal second conversion: %v", err)
		return p
	}
	if !bytes.Equal(first, second) {
		p.errorf("conversion is not deterministic")
	}
	return p
}
