// Command webengine builds an external-memory inverted index over a corpus
// of web documents and serves strict boolean-AND, TF-IDF ranked queries
// against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webengine",
		Short:         "External-memory inverted index builder and disk-backed search engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd(), newSearchCmd(), newStatsCmd())
	return root
}
