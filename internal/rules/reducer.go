// internal/rules/reducer.go
package rules

import (
	"github.com/loop/accessctl/internal/types"
)

/*
 * Tree mutation engine.
 *
 * Apply is a pure reducer over (state, action): every touched level of the
 * tree is copied, never mutated in place, so callers can hold earlier
 * snapshots safely. After every action a cleanup pass restores the operator
 * invariants (no leading/trailing operator, no adjacent operators, exactly
 * one operator between adjacent groups).
 *
 * Actions referencing unknown node ids return the state unchanged. Builder
 * actions are always derived from a rendered snapshot, so a dangling id is
 * a stale-closure bug upstream; a no-op keeps the editor alive instead of
 * crashing it.
 *
 * Group and rule lookups walk the whole tree. Rules are expected directly
 * inside a group; nested groups are walked through, not into, when matching
 * a rule id against a sequence.
 */

// Action is one builder mutation. The closed set of implementations is
// AddGroup, RemoveGroup, AddRule, RemoveRule, UpdateRule, UpdateOperator.
type Action interface {
	action()
}

// AddGroup appends a new empty group to the top-level sequence.
type AddGroup struct{}

// RemoveGroup removes the group with the given id and one adjacent operator.
type RemoveGroup struct {
	GroupID string
}

// AddRule appends a rule built from Rule to the group with the given id,
// inserting a default AND operator first when the group is non-empty.
type AddRule struct {
	GroupID string
	Rule    Spec
}

// RemoveRule removes the rule with the given id and one adjacent operator.
type RemoveRule struct {
	RuleID string
}

// UpdateRule merges a partial edit into the rule with the given id and
// re-runs it through the factory.
type UpdateRule struct {
	RuleID  string
	Updates Update
}

// UpdateOperator replaces the operator value of the operator node with the
// given id.
type UpdateOperator struct {
	OperatorID string
	Operator   types.LogicalOperator
}

func (AddGroup) action()       {}
func (RemoveGroup) action()    {}
func (AddRule) action()        {}
func (RemoveRule) action()     {}
func (UpdateRule) action()     {}
func (UpdateOperator) action() {}

// Initial returns the empty builder state.
func Initial() types.State {
	return types.State{}
}

// Apply reduces an action into a new state. The input state is never
// modified.
func Apply(state types.State, action Action) types.State {
	var next types.State

	switch a := action.(type) {
	case AddGroup:
		next = addGroup(state)
	case RemoveGroup:
		next = removeInTree(state, a.GroupID)
	case AddRule:
		next = addRule(state, a.GroupID, a.Rule)
	case RemoveRule:
		next = removeInTree(state, a.RuleID)
	case UpdateRule:
		next = updateRule(state, a.RuleID, a.Updates)
	case UpdateOperator:
		next = updateOperator(state, a.OperatorID, a.Operator)
	default:
		return state
	}

	return Cleanup(next)
}

// addGroup appends an empty group, followed by a default AND operator when
// the sequence was non-empty. A trailing operator is stripped by cleanup;
// cleanup then re-inserts the missing AND between the now-adjacent groups.
func addGroup(state types.State) types.State {
	next := append(clone(state), types.GroupNode{ID: types.NewNodeID()})
	if len(state) > 0 {
		next = append(next, types.OperatorNode{ID: types.NewNodeID(), Operator: types.OpAnd})
	}
	return next
}

// addRule appends a factory-built rule to the identified group, wherever it
// sits in the tree. A default AND operator is inserted first when the group
// already holds rules and does not end in an operator.
func addRule(state types.State, groupID string, spec Spec) types.State {
	return mapGroups(state, func(g types.GroupNode) (types.GroupNode, bool) {
		if g.ID != groupID {
			return g, false
		}
		rules := clone(g.Rules)
		if len(rules) > 0 && !types.IsOperator(rules[len(rules)-1]) {
			rules = append(rules, types.OperatorNode{ID: types.NewNodeID(), Operator: types.OpAnd})
		}
		rules = append(rules, NewRule(spec))
		g.Rules = rules
		return g, true
	})
}

// updateRule rebuilds the identified rule from its merged spec, preserving
// its id. Rules are matched one level inside each group.
func updateRule(state types.State, ruleID string, u Update) types.State {
	return mapSequences(state, func(seq types.State) (types.State, bool) {
		for i, n := range seq {
			if n.NodeID() != ruleID || types.IsOperator(n) || types.IsGroup(n) {
				continue
			}
			spec, ok := specOf(n)
			if !ok {
				continue
			}
			next := clone(seq)
			next[i] = newRuleWithID(ruleID, applyUpdate(spec, u))
			return next, true
		}
		return seq, false
	})
}

// updateOperator replaces the operator value of the identified operator,
// wherever it sits in the tree.
func updateOperator(state types.State, operatorID string, op types.LogicalOperator) types.State {
	return mapSequences(state, func(seq types.State) (types.State, bool) {
		for i, n := range seq {
			o, ok := n.(types.OperatorNode)
			if !ok || o.ID != operatorID {
				continue
			}
			next := clone(seq)
			o.Operator = op
			next[i] = o
			return next, true
		}
		return seq, false
	})
}

// removeInTree removes the identified node from whichever sequence contains
// it, together with one adjacent operator so no operator is left orphaned.
func removeInTree(state types.State, nodeID string) types.State {
	return mapSequences(state, func(seq types.State) (types.State, bool) {
		for i, n := range seq {
			if n.NodeID() == nodeID {
				return removeWithOperator(seq, i), true
			}
		}
		return seq, false
	})
}

// removeWithOperator removes seq[i] plus one neighboring operator.
// At the boundaries the single inward neighbor is taken when it is an
// operator; in the middle, the following operator is preferred when both
// neighbors are operators.
func removeWithOperator(seq types.State, i int) types.State {
	start, end := i, i+1 // removal window [start, end)

	switch {
	case i == 0:
		if len(seq) > 1 && types.IsOperator(seq[1]) {
			end = 2
		}
	case i == len(seq)-1:
		if types.IsOperator(seq[i-1]) {
			start = i - 1
		}
	default:
		prevOp := types.IsOperator(seq[i-1])
		nextOp := types.IsOperator(seq[i+1])
		switch {
		case nextOp:
			end = i + 2
		case prevOp:
			start = i - 1
		}
	}

	next := make(types.State, 0, len(seq)-(end-start))
	next = append(next, seq[:start]...)
	next = append(next, seq[end:]...)
	return next
}

// clone copies one level of a sequence. Nodes are values; only the slice
// spine needs copying for copy-on-write semantics.
func clone(seq types.State) types.State {
	next := make(types.State, len(seq))
	copy(next, seq)
	return next
}

// mapGroups rewrites the first group (in depth-first order) for which fn
// reports a change, copying every level on the path to it. The state is
// returned unchanged when no group matches.
func mapGroups(state types.State, fn func(types.GroupNode) (types.GroupNode, bool)) types.State {
	next, _ := mapGroupsSeq(state, fn)
	return next
}

func mapGroupsSeq(seq types.State, fn func(types.GroupNode) (types.GroupNode, bool)) (types.State, bool) {
	for i, n := range seq {
		g, ok := n.(types.GroupNode)
		if !ok {
			continue
		}
		if updated, changed := fn(g); changed {
			out := clone(seq)
			out[i] = updated
			return out, true
		}
		if rules, changed := mapGroupsSeq(g.Rules, fn); changed {
			out := clone(seq)
			g.Rules = rules
			out[i] = g
			return out, true
		}
	}
	return seq, false
}

// mapSequences applies fn to the top-level sequence and to every group's
// rules (depth-first), stopping at the first sequence fn reports changed.
func mapSequences(state types.State, fn func(types.State) (types.State, bool)) types.State {
	next, _ := mapSequencesRec(state, fn)
	return next
}

func mapSequencesRec(seq types.State, fn func(types.State) (types.State, bool)) (types.State, bool) {
	if next, changed := fn(seq); changed {
		return next, true
	}
	for i, n := range seq {
		g, ok := n.(types.GroupNode)
		if !ok {
			continue
		}
		if rules, changed := mapSequencesRec(g.Rules, fn); changed {
			out := clone(seq)
			g.Rules = rules
			out[i] = g
			return out, true
		}
	}
	return seq, false
}
