package main

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:          "combi",
		Short:        "Parser combinators with error recovery, demonstrated on a calculator language",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log verbosity (repeat for more)")

	rootCmd.AddCommand(newCheckCmd(fs))
	rootCmd.AddCommand(newEvalCmd(fs))
	rootCmd.AddCommand(newTokensCmd(fs))
	rootCmd.AddCommand(newGrammarCmd(fs))
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}
