package syntax

import "fmt"

// Position is a 1-indexed line/column location in a grammar source text.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
