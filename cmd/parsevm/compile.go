package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/halvard/parsevm"
	"github.com/halvard/parsevm/compiler"
)

var compileFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file>",
		Short:   "Compile a grammar into flat bytecode",
		Example: `  parsevm compile grammar.pvg -o grammar.bc`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	text, err := readGrammarArg(args)
	if err != nil {
		return err
	}

	cg, err := parsevm.Compile(text)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *compileFlags.output != "" {
		f, err := os.Create(*compileFlags.output)
		if err != nil {
			return fmt.Errorf("cannot create output file %s: %w", *compileFlags.output, err)
		}
		defer f.Close()
		w = f
	}

	dumpBytecode(w, cg)
	return nil
}

func readGrammarArg(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading grammar from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("cannot open the grammar file %s: %w", args[0], err)
	}
	return string(data), nil
}

func dumpBytecode(w io.Writer, cg *parsevm.CompiledGrammar) {
	for ip := 0; ip < cg.Len(); ip++ {
		op := cg.At(ip)
		fmt.Fprintf(w, "%4d %v %s", ip, op.Kind, cg.String(op.Idx))
		if op.Name != compiler.NoName {
			fmt.Fprintf(w, " (%s)", cg.String(op.Name))
		}
		fmt.Fprintln(w)
	}
}
