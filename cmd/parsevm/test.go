package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halvard/parsevm/fixture"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <fixture file or directory>",
		Short:   "Run ---delimited fixture files against their grammars",
		Example: `  parsevm test testdata/fixtures`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	results, err := fixture.RunAll(args[0])
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		fmt.Println(r)
		if r.Error != nil {
			failed++
		}
	}
	fmt.Printf("%d passed, %d failed\n", len(results)-failed, failed)

	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
