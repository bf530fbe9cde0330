package main

import (
	"fmt"
	"io"
	"reflect"

	"github.com/dhamidi/combi/ebnfscan"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
)

func newGrammarCmd(fs afero.Fs) *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "grammar <file>",
		Short: "Verify an EBNF grammar and list its token kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := fs.Open(filename)
			if err != nil {
				return fmt.Errorf("open grammar: %w", err)
			}
			defer f.Close()

			grammar, err := ebnf.Parse(filename, f)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return fmt.Errorf("%s: invalid grammar", filename)
			}

			if startProduction != "" {
				if err := ebnf.Verify(grammar, startProduction); err != nil {
					printErrors(cmd.ErrOrStderr(), err)
					return fmt.Errorf("%s: verification from %s failed", filename, startProduction)
				}
			}

			scanner, err := ebnfscan.New(grammar)
			if err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
			for _, kind := range scanner.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

// printErrors writes one line per error of an ebnf error list.
func printErrors(w io.Writer, err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
