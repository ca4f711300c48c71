// Package fixture loads and runs text-file parse scenarios for the
// parsevm CLI's "test" subcommand. A fixture file is three `---`
// delimited parts — a free-text description, the grammar surface
// syntax, and a scenario block of key: value lines — following the
// teacher's own ---delimited test-case format (spec/test/parser.go's
// splitIntoParts/readPart), adapted from "source plus expected parse
// tree" to "tokens plus expected match count" since the parser this
// toolkit runs has no fixed lexer of its own (spec.md §6: terminals are
// caller-matched literal strings, not a generated lexer's tokens).
package fixture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/halvard/parsevm"
)

// Scenario is one parse test case: a grammar, a start nonterminal, a
// token sequence, and the expected outcome.
type Scenario struct {
	Description string
	Grammar     string
	StartNT     string
	Tokens      []string
	MinMatch    int
	WantCount   int
}

// Result is the outcome of running one Scenario.
type Result struct {
	Path  string
	Error error
}

func (r *Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("FAIL %v: %v", r.Path, r.Error)
	}
	return fmt.Sprintf("PASS %v", r.Path)
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

// Parse reads one fixture file's three parts.
func Parse(r io.Reader) (*Scenario, error) {
	parts, err := splitParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected 3 '---'-delimited parts (description, grammar, scenario), found %d", len(parts))
	}

	sc := &Scenario{
		Description: strings.TrimSpace(parts[0]),
		Grammar:     parts[1],
	}
	if err := parseScenarioBlock(parts[2], sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func parseScenarioBlock(block string, sc *Scenario) error {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("malformed scenario line %q, expected 'key: value'", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "start":
			sc.StartNT = value
		case "tokens":
			if value != "" {
				sc.Tokens = strings.Fields(value)
			}
		case "min_match":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("min_match: %w", err)
			}
			sc.MinMatch = n
		case "want_count":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("want_count: %w", err)
			}
			sc.WantCount = n
		default:
			return fmt.Errorf("unknown scenario key %q", key)
		}
	}
	if sc.StartNT == "" {
		return fmt.Errorf("scenario is missing a 'start' nonterminal")
	}
	return nil
}

func splitParts(r io.Reader) ([]string, error) {
	var parts []string
	var cur []string

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if reDelim.MatchString(line) {
			parts = append(parts, strings.Join(cur, "\n"))
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	parts = append(parts, strings.Join(cur, "\n"))
	return parts, nil
}

// Load reads every fixture file under path (a single file, or every
// regular file in a directory tree) and parses it.
func Load(path string) ([]*ScenarioFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		sc, err := parseFile(path)
		return []*ScenarioFile{{Path: path, Scenario: sc, Error: err}}, nil
	}

	var out []*ScenarioFile
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if e.IsDir() {
			cs, err := Load(child)
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
			continue
		}
		sc, err := parseFile(child)
		out = append(out, &ScenarioFile{Path: child, Scenario: sc, Error: err})
	}
	return out, nil
}

// ScenarioFile pairs a parsed Scenario with the file it came from; Error
// is set instead of Scenario when the file couldn't be parsed.
type ScenarioFile struct {
	Path     string
	Scenario *Scenario
	Error    error
}

func parseFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Run compiles and executes sc, comparing the resulting derivation count
// against sc.WantCount.
func Run(sc *Scenario) error {
	cg, err := parsevm.Compile(sc.Grammar)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	matchFn := func(literal string, tokIdx int) bool {
		return tokIdx < len(sc.Tokens) && sc.Tokens[tokIdx] == literal
	}

	pt := parsevm.Run(sc.StartNT, cg, matchFn, sc.MinMatch)
	if got := pt.Count(); got != sc.WantCount {
		return fmt.Errorf("count: want %d, got %d", sc.WantCount, got)
	}
	return nil
}

// RunAll runs every scenario file found under path and returns one
// Result per file, in the order Load returned them.
func RunAll(path string) ([]*Result, error) {
	files, err := Load(path)
	if err != nil {
		return nil, err
	}
	var results []*Result
	for _, f := range files {
		if f.Error != nil {
			results = append(results, &Result{Path: f.Path, Error: f.Error})
			continue
		}
		results = append(results, &Result{Path: f.Path, Error: Run(f.Scenario)})
	}
	return results, nil
}
