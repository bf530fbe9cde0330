package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/dhamidi/combi/diag"
	"github.com/dhamidi/combi/internal/calc"
	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type fileReport struct {
	Path       string        `json:"path" yaml:"path"`
	Statements int           `json:"statements" yaml:"statements"`
	Errors     []errorReport `json:"errors" yaml:"errors"`

	source span.Source
	errs   []*parse.Error
}

type errorReport struct {
	Kind    string    `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Label   string    `json:"label,omitempty" yaml:"label,omitempty"`
	Start   span.Page `json:"start" yaml:"start"`
	End     span.Page `json:"end" yaml:"end"`
	Notes   []string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func newCheckCmd(fs afero.Fs) *cobra.Command {
	var outputFormat string
	var colorMode string
	var jobs int

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse calculator files and report every syntax error",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := checkFiles(cmd.Context(), fs, args, jobs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "text":
				useColor, err := colorEnabled(colorMode, out)
				if err != nil {
					return err
				}
				writeText(out, reports, diag.NewRenderer(diag.WithColor(useColor)))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(reports); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				if err := enc.Close(); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			failed := 0
			for _, r := range reports {
				if len(r.Errors) > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files have errors", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, yaml)")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize text output (auto, always, never)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files checked concurrently")

	return cmd
}

// checkFiles parses every file concurrently. Reports are returned in the
// order of paths. Reading a file is the only fatal error.
func checkFiles(ctx context.Context, fs afero.Fs, paths []string, jobs int) ([]*fileReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]*fileReport, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := checkFile(fs, path)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func checkFile(fs afero.Fs, path string) (*fileReport, error) {
	src, err := readSource(fs, path)
	if err != nil {
		return nil, err
	}
	prog, errs, err := calc.Parse(src)
	if perr, ok := err.(*parse.Error); ok {
		errs = append(errs, perr)
	}

	report := &fileReport{
		Path:       path,
		Statements: len(prog.Statements),
		Errors:     []errorReport{},
		source:     src,
		errs:       errs,
	}
	for _, e := range errs {
		d := e.DiagnosticWithCauses()
		report.Errors = append(report.Errors, errorReport{
			Kind:    e.Kind.String(),
			Message: d.Message,
			Label:   d.Label,
			Start:   d.Span.Start.Page,
			End:     d.Span.End.Page,
			Notes:   d.Notes,
		})
	}
	return report, nil
}

func readSource(fs afero.Fs, path string) (span.Source, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return span.Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	return span.New(string(data), span.WithName(path), span.WithLineEnding(span.Universal)), nil
}

func writeText(w io.Writer, reports []*fileReport, renderer *diag.Renderer) {
	for _, r := range reports {
		if len(r.errs) == 0 {
			fmt.Fprintf(w, "%s: ok (%d statements)\n", r.Path, r.Statements)
			continue
		}
		fmt.Fprintf(w, "%s: %d errors\n", r.Path, len(r.errs))
		for _, e := range r.errs {
			_ = renderer.Render(w, e.DiagnosticWithCauses())
		}
	}
}

func colorEnabled(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := out.(*os.File)
		if !ok || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	}
	return false, fmt.Errorf("unknown color mode: %s", mode)
}
