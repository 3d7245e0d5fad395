// internal/rules/cleanup.go
package rules

import (
	"github.com/loop/accessctl/internal/types"
)

/*
 * Operator-balance cleanup.
 *
 * Cleanup restores the structural invariants after a mutation, at the top
 * level and inside every group:
 *
 *   - no operator at the start or end of a sequence
 *   - no two adjacent operators (the later one wins)
 *   - exactly one operator between two adjacent condition nodes (a default
 *     AND is inserted where one is missing)
 *
 * Cleanup is idempotent: a second pass over cleaned state is a no-op.
 */

// Cleanup rebalances operators across the whole tree. The input state is
// never modified.
func Cleanup(state types.State) types.State {
	return cleanupSeq(state)
}

func cleanupSeq(seq types.State) types.State {
	next := make(types.State, 0, len(seq))

	// Recurse into groups first so this level works on settled children.
	for _, n := range seq {
		if g, ok := n.(types.GroupNode); ok {
			g.Rules = cleanupSeq(g.Rules)
			next = append(next, g)
			continue
		}
		next = append(next, n)
	}

	// Strip leading and trailing operators.
	for len(next) > 0 && types.IsOperator(next[0]) {
		next = next[1:]
	}
	for len(next) > 0 && types.IsOperator(next[len(next)-1]) {
		next = next[:len(next)-1]
	}

	// Collapse adjacent operator pairs, keeping the later one, and insert a
	// default AND between directly-adjacent condition nodes.
	balanced := make(types.State, 0, len(next))
	for _, n := range next {
		if len(balanced) > 0 {
			last := balanced[len(balanced)-1]
			switch {
			case types.IsOperator(last) && types.IsOperator(n):
				balanced[len(balanced)-1] = n
				continue
			case !types.IsOperator(last) && !types.IsOperator(n):
				balanced = append(balanced, types.OperatorNode{
					ID:       types.NewNodeID(),
					Operator: types.OpAnd,
				})
			}
		}
		balanced = append(balanced, n)
	}

	return balanced
}
