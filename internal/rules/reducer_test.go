package rules

import (
	"reflect"
	"testing"

	"github.com/loop/accessctl/internal/types"
)

// tokenSpec builds a minimal valid ERC20 spec for tests.
func tokenSpec(numTokens int64) Spec {
	return Spec{
		Type:      types.RuleToken,
		Subtype:   types.ERC20,
		Chain:     "baseSepolia",
		Contract:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		NumTokens: numTokens,
	}
}

func TestApply_AddGroup(t *testing.T) {
	state := Apply(Initial(), AddGroup{})

	if len(state) != 1 {
		t.Fatalf("len(state) = %v, want 1", len(state))
	}
	if !types.IsGroup(state[0]) {
		t.Fatalf("state[0] is %T, want GroupNode", state[0])
	}
}

func TestApply_AddGroup_InsertsOperatorBetweenGroups(t *testing.T) {
	state := Apply(Initial(), AddGroup{})
	state = Apply(state, AddGroup{})

	if len(state) != 3 {
		t.Fatalf("len(state) = %v, want 3", len(state))
	}
	op, ok := state[1].(types.OperatorNode)
	if !ok {
		t.Fatalf("state[1] is %T, want OperatorNode", state[1])
	}
	if op.Operator != types.OpAnd {
		t.Errorf("Operator = %v, want %v", op.Operator, types.OpAnd)
	}
	if !types.IsGroup(state[0]) || !types.IsGroup(state[2]) {
		t.Errorf("expected groups at positions 0 and 2, got %T and %T", state[0], state[2])
	}
}

func TestApply_AddRule(t *testing.T) {
	state := Apply(Initial(), AddGroup{})
	groupID := state[0].NodeID()

	state = Apply(state, AddRule{GroupID: groupID, Rule: tokenSpec(1)})

	group := state[0].(types.GroupNode)
	if len(group.Rules) != 1 {
		t.Fatalf("len(group.Rules) = %v, want 1", len(group.Rules))
	}
	rule, ok := group.Rules[0].(types.TokenRule)
	if !ok {
		t.Fatalf("group.Rules[0] is %T, want TokenRule", group.Rules[0])
	}
	if rule.Subtype != types.ERC20 {
		t.Errorf("Subtype = %v, want %v", rule.Subtype, types.ERC20)
	}
}

func TestApply_AddRule_InsertsOperatorBeforeSecondRule(t *testing.T) {
	state := Apply(Initial(), AddGroup{})
	groupID := state[0].NodeID()

	state = Apply(state, AddRule{GroupID: groupID, Rule: tokenSpec(1)})
	state = Apply(state, AddRule{GroupID: groupID, Rule: tokenSpec(2)})

	group := state[0].(types.GroupNode)
	if len(group.Rules) != 3 {
		t.Fatalf("len(group.Rules) = %v, want 3", len(group.Rules))
	}
	op, ok := group.Rules[1].(types.OperatorNode)
	if !ok {
		t.Fatalf("group.Rules[1] is %T, want OperatorNode", group.Rules[1])
	}
	if op.Operator != types.OpAnd {
		t.Errorf("Operator = %v, want %v", op.Operator, types.OpAnd)
	}
}

func TestApply_AddRule_UnknownGroup(t *testing.T) {
	state := Apply(Initial(), AddGroup{})

	next := Apply(state, AddRule{GroupID: "no-such-group", Rule: tokenSpec(1)})

	if !reflect.DeepEqual(next, state) {
		t.Errorf("state changed for unknown group id")
	}
}

// seqOfRules builds a group holding n rules joined by AND operators,
// returning the state and the rule ids in order.
func seqOfRules(t *testing.T, n int) (types.State, string, []string) {
	t.Helper()

	state := Apply(Initial(), AddGroup{})
	groupID := state[0].NodeID()
	for i := 0; i < n; i++ {
		state = Apply(state, AddRule{GroupID: groupID, Rule: tokenSpec(int64(i + 1))})
	}

	var ruleIDs []string
	for _, node := range state[0].(types.GroupNode).Rules {
		if !types.IsOperator(node) {
			ruleIDs = append(ruleIDs, node.NodeID())
		}
	}
	if len(ruleIDs) != n {
		t.Fatalf("built %v rules, want %v", len(ruleIDs), n)
	}
	return state, groupID, ruleIDs
}

func TestApply_RemoveRule_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		remove     int     // index into ruleIDs
		wantTokens []int64 // NumTokens of surviving rules in order
	}{
		{name: "first rule removes following operator", remove: 0, wantTokens: []int64{2, 3}},
		{name: "middle rule removes following operator", remove: 1, wantTokens: []int64{1, 3}},
		{name: "last rule removes preceding operator", remove: 2, wantTokens: []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _, ruleIDs := seqOfRules(t, 3)

			next := Apply(state, RemoveRule{RuleID: ruleIDs[tt.remove]})

			group := next[0].(types.GroupNode)
			if len(group.Rules) != 3 {
				t.Fatalf("len(group.Rules) = %v, want 3", len(group.Rules))
			}
			var gotTokens []int64
			for _, node := range group.Rules {
				if r, ok := node.(types.TokenRule); ok {
					gotTokens = append(gotTokens, r.NumTokens)
				}
			}
			if !reflect.DeepEqual(gotTokens, tt.wantTokens) {
				t.Errorf("surviving rules = %v, want %v", gotTokens, tt.wantTokens)
			}
		})
	}
}

func TestApply_RemoveRule_SoleRuleLeavesEmptyGroup(t *testing.T) {
	state, _, ruleIDs := seqOfRules(t, 1)

	next := Apply(state, RemoveRule{RuleID: ruleIDs[0]})

	group := next[0].(types.GroupNode)
	if len(group.Rules) != 0 {
		t.Errorf("len(group.Rules) = %v, want 0", len(group.Rules))
	}
}

func TestApply_RemoveRule_UnknownID(t *testing.T) {
	state, _, _ := seqOfRules(t, 2)

	next := Apply(state, RemoveRule{RuleID: "no-such-rule"})

	if !reflect.DeepEqual(next, state) {
		t.Errorf("state changed for unknown rule id")
	}
}

func TestApply_RemoveGroup(t *testing.T) {
	state := Apply(Initial(), AddGroup{})
	state = Apply(state, AddGroup{})
	firstID := state[0].NodeID()
	secondID := state[2].NodeID()

	next := Apply(state, RemoveGroup{GroupID: firstID})

	if len(next) != 1 {
		t.Fatalf("len(next) = %v, want 1", len(next))
	}
	if next[0].NodeID() != secondID {
		t.Errorf("surviving group = %v, want %v", next[0].NodeID(), secondID)
	}
}

func TestApply_RemoveGroup_LastGroupEmptiesState(t *testing.T) {
	state := Apply(Initial(), AddGroup{})

	next := Apply(state, RemoveGroup{GroupID: state[0].NodeID()})

	if len(next) != 0 {
		t.Errorf("len(next) = %v, want 0", len(next))
	}
}

func TestApply_UpdateOperator(t *testing.T) {
	state := Apply(Initial(), AddGroup{})
	state = Apply(state, AddGroup{})
	opID := state[1].NodeID()

	next := Apply(state, UpdateOperator{OperatorID: opID, Operator: types.OpOr})

	op := next[1].(types.OperatorNode)
	if op.Operator != types.OpOr {
		t.Errorf("Operator = %v, want %v", op.Operator, types.OpOr)
	}
	if op.ID != opID {
		t.Errorf("ID = %v, want %v", op.ID, opID)
	}
}

func TestApply_UpdateRule_PreservesID(t *testing.T) {
	state, _, ruleIDs := seqOfRules(t, 1)
	numTokens := int64(42)

	next := Apply(state, UpdateRule{RuleID: ruleIDs[0], Updates: Update{NumTokens: &numTokens}})

	rule := next[0].(types.GroupNode).Rules[0].(types.TokenRule)
	if rule.ID != ruleIDs[0] {
		t.Errorf("ID = %v, want %v", rule.ID, ruleIDs[0])
	}
	if rule.NumTokens != 42 {
		t.Errorf("NumTokens = %v, want 42", rule.NumTokens)
	}
	if rule.Chain != "baseSepolia" {
		t.Errorf("Chain = %v, want baseSepolia (unrelated field changed)", rule.Chain)
	}
}

func TestApply_UpdateRule_SubtypeSwitchDropsTokenID(t *testing.T) {
	state := Apply(Initial(), AddGroup{})
	groupID := state[0].NodeID()
	state = Apply(state, AddRule{GroupID: groupID, Rule: Spec{
		Type:      types.RuleToken,
		Subtype:   types.ERC1155,
		Chain:     "baseSepolia",
		Contract:  "0x7c64a9D1004Cc28f3E8a76a61e87cAA4e4c70B19",
		NumTokens: 1,
		TokenID:   "5",
	}})
	ruleID := state[0].(types.GroupNode).Rules[0].NodeID()

	subtype := types.ERC20
	next := Apply(state, UpdateRule{RuleID: ruleID, Updates: Update{Subtype: &subtype}})

	rule := next[0].(types.GroupNode).Rules[0].(types.TokenRule)
	if rule.Subtype != types.ERC20 {
		t.Fatalf("Subtype = %v, want %v", rule.Subtype, types.ERC20)
	}
	if rule.TokenID != "" {
		t.Errorf("TokenID = %q, want empty after switch to ERC20", rule.TokenID)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	state, groupID, ruleIDs := seqOfRules(t, 2)
	snapshot := deepCopyState(state)

	Apply(state, RemoveRule{RuleID: ruleIDs[0]})
	Apply(state, AddRule{GroupID: groupID, Rule: tokenSpec(9)})
	Apply(state, RemoveGroup{GroupID: groupID})

	if !reflect.DeepEqual(state, snapshot) {
		t.Errorf("input state mutated by Apply")
	}
}

// deepCopyState copies a state including every nested group sequence.
func deepCopyState(seq types.State) types.State {
	out := make(types.State, len(seq))
	for i, n := range seq {
		if g, ok := n.(types.GroupNode); ok {
			g.Rules = deepCopyState(g.Rules)
			out[i] = g
			continue
		}
		out[i] = n
	}
	return out
}

func TestCleanup_StripsLeadingAndTrailingOperators(t *testing.T) {
	state := types.State{
		types.OperatorNode{ID: "op-1", Operator: types.OpAnd},
		types.GroupNode{ID: "g-1"},
		types.OperatorNode{ID: "op-2", Operator: types.OpOr},
	}

	next := Cleanup(state)

	if len(next) != 1 {
		t.Fatalf("len(next) = %v, want 1", len(next))
	}
	if next[0].NodeID() != "g-1" {
		t.Errorf("next[0] = %v, want g-1", next[0].NodeID())
	}
}

func TestCleanup_CollapsesAdjacentOperators(t *testing.T) {
	state := types.State{
		types.GroupNode{ID: "g-1"},
		types.OperatorNode{ID: "op-1", Operator: types.OpAnd},
		types.OperatorNode{ID: "op-2", Operator: types.OpOr},
		types.GroupNode{ID: "g-2"},
	}

	next := Cleanup(state)

	if len(next) != 3 {
		t.Fatalf("len(next) = %v, want 3", len(next))
	}
	op := next[1].(types.OperatorNode)
	if op.ID != "op-2" {
		t.Errorf("kept operator = %v, want the later op-2", op.ID)
	}
	if op.Operator != types.OpOr {
		t.Errorf("Operator = %v, want %v", op.Operator, types.OpOr)
	}
}

func TestCleanup_InsertsOperatorBetweenAdjacentGroups(t *testing.T) {
	state := types.State{
		types.GroupNode{ID: "g-1"},
		types.GroupNode{ID: "g-2"},
	}

	next := Cleanup(state)

	if len(next) != 3 {
		t.Fatalf("len(next) = %v, want 3", len(next))
	}
	op, ok := next[1].(types.OperatorNode)
	if !ok {
		t.Fatalf("next[1] is %T, want OperatorNode", next[1])
	}
	if op.Operator != types.OpAnd {
		t.Errorf("Operator = %v, want %v", op.Operator, types.OpAnd)
	}
}

func TestCleanup_RecursesIntoGroups(t *testing.T) {
	state := types.State{
		types.GroupNode{ID: "g-1", Rules: types.State{
			types.OperatorNode{ID: "op-1", Operator: types.OpAnd},
			types.TokenRule{ID: "r-1", Subtype: types.ERC20},
			types.OperatorNode{ID: "op-2", Operator: types.OpAnd},
		}},
	}

	next := Cleanup(state)

	group := next[0].(types.GroupNode)
	if len(group.Rules) != 1 {
		t.Fatalf("len(group.Rules) = %v, want 1", len(group.Rules))
	}
	if group.Rules[0].NodeID() != "r-1" {
		t.Errorf("group.Rules[0] = %v, want r-1", group.Rules[0].NodeID())
	}
}

func TestCleanup_EmptyState(t *testing.T) {
	next := Cleanup(types.State{})
	if len(next) != 0 {
		t.Errorf("len(next) = %v, want 0", len(next))
	}
}
