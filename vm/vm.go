// Package vm is the non-deterministic scheduler that runs a compiled
// grammar against a token stream (spec.md §4.2). It is single-threaded
// and cooperative: "threads" are Thread records, not OS threads.
// Suspension happens only at Match instructions; there is no preemption,
// no timers, no cancellation (spec.md §5).
package vm

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/halvard/parsevm/compiler"
	"github.com/halvard/parsevm/forest"
	"github.com/halvard/parsevm/stack"
	"github.com/halvard/parsevm/stream"
)

// MatchFunc decides whether the token at tokIdx satisfies literal. It is
// invoked synchronously, at most once per (literal, tokIdx) pair within
// one call to Run (spec.md §4.2, §8).
type MatchFunc func(literal string, tokIdx int) bool

// Thread is a VM execution context: a shared-stack pointer, an
// instruction pointer, and the most recent fragment it produced. It owns
// no buffers beyond these three integers.
type Thread struct {
	SP   stack.Pointer
	IP   int
	Frag forest.Index
}

// debugLevel reads PARSERDEBUG once per Run call, per spec.md §6: it
// controls diagnostic verbosity (0-5) and must never affect the parse
// outcome.
func debugLevel() int {
	s, ok := os.LookupEnv("PARSERDEBUG")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vm: PARSERDEBUG=%q is not an integer, ignoring\n", s)
		return 0
	}
	return n
}

// Run executes cg's bytecode starting from every production of startNT
// against the token stream implied by matchFn, exploring every
// derivation. minMatch filters out completions that consumed fewer than
// that many tokens. The returned ParsedTrees owns every fragment that
// any surviving thread or completed tail still references.
//
// Run panics if startNT was never interned in cg — an unknown start
// nonterminal is a programmer error, not a parse failure (spec.md §7).
func Run(startNT string, cg *compiler.CompiledGrammar, matchFn MatchFunc, minMatch int) *stream.ParsedTrees {
	return run(startNT, cg, matchFn, minMatch, nil)
}

// stepObserver, when non-nil, is called once per completed token step —
// after that step's matching phase has produced the threads runnable for
// the next one, before tokIdx advances — with the arena, those threads,
// and the tails recorded so far. It exists for white-box tests that need
// to check arena invariants mid-run; Run itself always passes nil.
type stepObserver func(arena *forest.Arena, live []Thread, tails []stream.Tail)

func run(startNT string, cg *compiler.CompiledGrammar, matchFn MatchFunc, minMatch int, observe stepObserver) *stream.ParsedTrees {
	debug := debugLevel()

	ntIdx, ok := cg.LookupString(startNT)
	if !ok {
		panic(fmt.Sprintf("vm: unknown start nonterminal %q", startNT))
	}
	startAddrs := cg.LookupNonterm(ntIdx)
	if len(startAddrs) == 0 {
		panic(fmt.Sprintf("vm: start nonterminal %q has no productions", startNT))
	}

	arena := forest.New()
	sstack := stack.New()

	var tails []stream.Tail
	var runnable []Thread

	for _, addr := range startAddrs {
		frag := arena.AllocRoot(ntIdx)
		runnable = append(runnable, Thread{SP: stack.Nil, IP: addr, Frag: frag})
	}

	// matchable is kept sorted by the Match literal's string-table
	// index so that every thread expecting the same literal lands
	// adjacent to each other — this is what lets the per-token "matched"
	// cache below guarantee at most one matchFn call per (literal,
	// tokIdx) pair (spec.md §4.2, §8).
	type pending struct {
		validx int
		thread Thread
	}
	var matchable []pending

	matched := make([]int8, cg.StringCount())

	tokIdx := 0
	for len(runnable) > 0 {
		if debug > 2 {
			fmt.Fprintf(os.Stderr, "at tokidx %d running %d threads\n", tokIdx, len(runnable))
		}

		for len(runnable) > 0 {
			n := len(runnable) - 1
			th := runnable[n]
			runnable = runnable[:n]

			op := cg.At(th.IP)
			if debug > 3 {
				fmt.Fprintf(os.Stderr, "** %d %s (runnable %d matchable %d)\n", th.IP, op.Kind, len(runnable), len(matchable))
			}

			switch op.Kind {
			case compiler.Match:
				pos := sort.Search(len(matchable), func(i int) bool { return matchable[i].validx >= op.Idx })
				matchable = append(matchable, pending{})
				copy(matchable[pos+1:], matchable[pos:])
				matchable[pos] = pending{validx: op.Idx, thread: th}

			case compiler.Fork:
				start := arena.AllocForkStart(th.Frag, op.Idx, op.Name)
				for _, addr := range cg.LookupNonterm(op.Idx) {
					arena.IncRef(start)
					sp := sstack.Push(th.SP, th.IP)
					runnable = append(runnable, Thread{SP: sp, IP: addr, Frag: start})
				}

			case compiler.Return:
				if th.SP == stack.Nil {
					if tokIdx >= minMatch {
						tails = append(tails, stream.Tail{Frag: th.Frag, TokensConsumed: tokIdx})
					} else {
						arena.Release(th.Frag)
					}
					continue
				}
				ret := sstack.Top(th.SP)
				newFrag := arena.AllocNonTerm(th.Frag, op.Idx, op.Name)
				th.IP = ret + 1
				th.SP = sstack.Pop(th.SP)
				th.Frag = newFrag
				runnable = append(runnable, th)

			default:
				panic(fmt.Sprintf("vm: unknown opcode kind %v", op.Kind))
			}
		}

		for i := range matched {
			matched[i] = 0
		}
		if debug > 1 && len(matchable) > 0 {
			fmt.Fprintf(os.Stderr, "matching %d threads at token index %d\n", len(matchable), tokIdx)
		}

		for _, p := range matchable {
			op := cg.At(p.thread.IP)
			if op.Kind != compiler.Match {
				panic("vm: matchable entry not at a Match instruction")
			}

			var ok bool
			switch matched[op.Idx] {
			case 1:
				ok = true
			case -1:
				ok = false
			default:
				ok = matchFn(cg.String(op.Idx), tokIdx)
				if ok {
					matched[op.Idx] = 1
				} else {
					matched[op.Idx] = -1
				}
			}

			if !ok {
				arena.Release(p.thread.Frag)
				continue
			}

			newFrag := arena.AllocTermValue(p.thread.Frag, tokIdx, op.Name)
			th := p.thread
			th.IP++
			th.Frag = newFrag
			runnable = append(runnable, th)
		}
		matchable = matchable[:0]

		if observe != nil {
			observe(arena, runnable, tails)
		}

		tokIdx++
	}

	return stream.New(arena, tails, cg.Strings())
}
