// Command symgraph is the CLI front end over the core analyzer: it gathers
// a project's source files, runs ProjectAnalyzer/TreeShaker, and prints
// Reporter output. Grounded on the teacher's cmd/code-indexer/main.go for
// console style (plain fmt.Printf status lines), but
// rebuilt on github.com/spf13/cobra and github.com/spf13/viper instead of
// the teacher's raw os.Args switch — both were go.mod dependencies the
// teacher's own CLI never used.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
