package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halvard/parsevm"
)

var runFlags = struct {
	start    *string
	tokens   *string
	minMatch *int
	events   *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "run <grammar file>",
		Short:   "Run compiled bytecode against a whitespace-separated token sequence",
		Example: `  parsevm run grammar.pvg --start S --tokens "a b"`,
		Args:    cobra.ExactArgs(1),
		RunE:    runRun,
	}
	runFlags.start = cmd.Flags().String("start", "", "start nonterminal (required)")
	runFlags.tokens = cmd.Flags().String("tokens", "", "whitespace-separated token sequence to match")
	runFlags.minMatch = cmd.Flags().Int("min-match", 0, "minimum number of tokens a derivation must consume")
	runFlags.events = cmd.Flags().Bool("events", false, "print the start/term/end events of the first derivation")
	cmd.MarkFlagRequired("start")
	rootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	text, err := readGrammarArg(args)
	if err != nil {
		return err
	}

	cg, err := parsevm.Compile(text)
	if err != nil {
		return err
	}

	tokens := strings.Fields(*runFlags.tokens)
	matchFn := func(literal string, tokIdx int) bool {
		return tokIdx < len(tokens) && tokens[tokIdx] == literal
	}

	minMatch := *runFlags.minMatch
	if !cmd.Flags().Changed("min-match") {
		minMatch = loadedConfig.MinMatch
	}

	pt := parsevm.Run(*runFlags.start, cg, matchFn, minMatch)
	fmt.Printf("%d derivation(s)\n", pt.Count())

	if *runFlags.events && pt.Count() > 0 {
		pt.Execute(0, &printingHandler{})
	}
	return nil
}

// printingHandler renders start/term/end events as indented lines,
// mirroring the teacher's own text-format tree printer.
type printingHandler struct {
	depth int
}

func (h *printingHandler) Start(ntName, name string) {
	fmt.Printf("%s(%s%s\n", strings.Repeat("  ", h.depth), ntName, suffix(name))
	h.depth++
}

func (h *printingHandler) End(ntName, name string) {
	h.depth--
	fmt.Printf("%s)%s%s\n", strings.Repeat("  ", h.depth), ntName, suffix(name))
}

func (h *printingHandler) Term(tokIdx int, name string) {
	fmt.Printf("%s#%d%s\n", strings.Repeat("  ", h.depth), tokIdx, suffix(name))
}

func suffix(name string) string {
	if name == "" {
		return ""
	}
	return " (" + name + ")"
}
