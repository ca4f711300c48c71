package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/halvard/parsevm"
)

var replFlags = struct {
	start *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "repl <grammar file>",
		Short:   "Interactively run token sequences against a compiled grammar",
		Example: `  parsevm repl grammar.pvg --start S`,
		Args:    cobra.ExactArgs(1),
		RunE:    runRepl,
	}
	replFlags.start = cmd.Flags().String("start", "", "start nonterminal (required)")
	cmd.MarkFlagRequired("start")
	rootCmd.AddCommand(cmd)
}

// lineReader is satisfied by both the interactive readline.Instance and
// the plain bufio.Scanner used when stdin isn't a terminal, mirroring
// the teacher's own split between an InteractiveCommandReader and a
// DirectCommandReader.
type lineReader interface {
	readLine() (string, error)
}

type readlineReader struct{ rl *readline.Instance }

func (r *readlineReader) readLine() (string, error) { return r.rl.Readline() }

type scannerReader struct{ s *bufio.Scanner }

func (r *scannerReader) readLine() (string, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.s.Text(), nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	text, err := readGrammarArg(args)
	if err != nil {
		return err
	}
	cg, err := parsevm.Compile(text)
	if err != nil {
		return err
	}

	lr, closeFn, err := newLineReader()
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Printf("parsevm repl: enter whitespace-separated tokens, start nonterminal %q\n", *replFlags.start)
	for {
		line, err := lr.readLine()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		matchFn := func(literal string, tokIdx int) bool {
			return tokIdx < len(tokens) && tokens[tokIdx] == literal
		}
		pt := parsevm.Run(*replFlags.start, cg, matchFn, 0)
		fmt.Printf("%d derivation(s)\n", pt.Count())
	}
}

func newLineReader() (lineReader, func() error, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		rl, err := readline.NewEx(&readline.Config{Prompt: "parsevm> "})
		if err != nil {
			return nil, nil, fmt.Errorf("create readline config: %w", err)
		}
		return &readlineReader{rl: rl}, rl.Close, nil
	}
	return &scannerReader{s: bufio.NewScanner(os.Stdin)}, func() error { return nil }, nil
}
