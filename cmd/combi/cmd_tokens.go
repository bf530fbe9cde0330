package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/combi/diag"
	"github.com/dhamidi/combi/ebnfscan"
	"github.com/dhamidi/combi/internal/calc"
	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newTokensCmd(fs afero.Fs) *cobra.Command {
	var grammarFile string
	var skip []string

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens of a file",
		Long: `Print the tokens of a file, one per line.

Without --grammar the calculator scanner is used and whitespace and comments
are hidden. With --grammar the token productions of an EBNF grammar are used
and the kinds listed in --skip are hidden.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(fs, args[0])
			if err != nil {
				return err
			}

			var bad int
			if grammarFile == "" {
				bad = printTokens(cmd.OutOrStdout(), cmd.ErrOrStderr(), calc.NewLexer(src))
			} else {
				scanner, err := loadGrammar(fs, grammarFile)
				if err != nil {
					return err
				}
				hidden := parse.In(skip...)
				lex := parse.NewLexer[string](src, scanner, parse.WithFilter(parse.Not(hidden)))
				bad = printTokens(cmd.OutOrStdout(), cmd.ErrOrStderr(), lex)
			}
			if bad > 0 {
				return fmt.Errorf("%s: %d unrecognized tokens", args[0], bad)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&grammarFile, "grammar", "g", "", "EBNF grammar defining the token productions")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "token kinds to hide (with --grammar)")

	return cmd
}

func loadGrammar(fs afero.Fs, path string) (*ebnfscan.Scanner, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return ebnfscan.Load(path, f)
}

// printTokens writes every visible token of lex to w and reports
// unrecognized text to errw, skipping past it. It returns the number of
// unrecognized tokens.
func printTokens[T comparable](w, errw io.Writer, lex parse.Lexer[T]) int {
	bad := 0
	for {
		tok, err := lex.Next()
		if errors.Is(err, io.EOF) {
			return bad
		}
		if err != nil {
			bad++
			var perr *parse.Error
			if errors.As(err, &perr) {
				_ = diag.Render(errw, perr.Diagnostic())
			}
			if err := lex.Skip(); err != nil {
				return bad
			}
			continue
		}
		fmt.Fprintf(w, "%s %v %q\n", position(tok.Span), tok.Kind, tok.Text())
	}
}

func position(sp span.Span) string {
	return fmt.Sprintf("%d:%d-%d:%d", sp.Start.Page.Line, sp.Start.Page.Column, sp.End.Page.Line, sp.End.Page.Column)
}
