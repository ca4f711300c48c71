package main

import (
	"bytes"
	"io"
	"os"
	"text/template"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/halvard/parsevm"
	"github.com/halvard/parsevm/compiler"
)

var showFlags = struct {
	color *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show <grammar file>",
		Short:   "Print a compiled grammar's bytecode and stats in readable form",
		Example: `  parsevm show grammar.pvg`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runShow,
	}
	showFlags.color = cmd.Flags().Bool("color", false, "syntax-highlight the bytecode listing")
	rootCmd.AddCommand(cmd)
}

const statsTemplate = `# Stats

{{ .NontermCount }} nonterminals, {{ .OpcodeCount }} opcodes, {{ .StringCount }} interned strings

# Bytecode
`

type showStats struct {
	NontermCount string
	OpcodeCount  string
	StringCount  string
}

func runShow(cmd *cobra.Command, args []string) error {
	text, err := readGrammarArg(args)
	if err != nil {
		return err
	}

	cg, err := parsevm.Compile(text)
	if err != nil {
		return err
	}

	return writeShow(os.Stdout, cg, *showFlags.color)
}

func writeShow(w io.Writer, cg *parsevm.CompiledGrammar, color bool) error {
	stats := showStats{
		NontermCount: humanize.Comma(int64(nontermCount(cg))),
		OpcodeCount:  humanize.Comma(int64(cg.Len())),
		StringCount:  humanize.Comma(int64(cg.StringCount())),
	}

	tmpl, err := template.New("").Parse(statsTemplate)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, stats); err != nil {
		return err
	}

	var listing bytes.Buffer
	dumpBytecode(&listing, cg)

	if !color {
		_, err := io.Copy(w, &listing)
		return err
	}
	return quick.Highlight(w, listing.String(), "yaml", "terminal256", "monokai")
}

// nontermCount counts the distinct nonterminal names that own at least
// one production, by scanning the Return opcodes that close each one.
func nontermCount(cg *parsevm.CompiledGrammar) int {
	seen := make(map[int]struct{})
	for ip := 0; ip < cg.Len(); ip++ {
		if op := cg.At(ip); op.Kind == compiler.Return {
			seen[op.Idx] = struct{}{}
		}
	}
	return len(seen)
}
