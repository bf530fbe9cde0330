package main

import (
	"errors"
	"fmt"

	"github.com/dhamidi/combi/diag"
	"github.com/dhamidi/combi/internal/calc"
	"github.com/dhamidi/combi/parse"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newEvalCmd(fs afero.Fs) *cobra.Command {
	var colorMode string

	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Evaluate a calculator file and print the value of every statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(fs, args[0])
			if err != nil {
				return err
			}
			useColor, err := colorEnabled(colorMode, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderer := diag.NewRenderer(diag.WithColor(useColor))

			prog, errs, err := calc.Parse(src)
			if perr, ok := err.(*parse.Error); ok {
				errs = append(errs, perr)
			}
			if len(errs) > 0 {
				for _, e := range errs {
					_ = renderer.Render(cmd.ErrOrStderr(), e.DiagnosticWithCauses())
				}
				return fmt.Errorf("%s: %d syntax errors", args[0], len(errs))
			}

			out, err := calc.Eval(prog, calc.Env{})
			for _, o := range out {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			var perr *parse.Error
			if errors.As(err, &perr) {
				_ = renderer.Render(cmd.ErrOrStderr(), perr.Diagnostic())
				return fmt.Errorf("%s: evaluation failed", args[0])
			}
			return err
		},
	}

	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize diagnostics (auto, always, never)")

	return cmd
}
