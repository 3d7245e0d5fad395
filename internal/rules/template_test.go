package rules

import (
	"testing"

	"github.com/loop/accessctl/internal/types"
)

func testTemplate() types.State {
	return Default(TemplateConfig{
		Chain:    "baseSepolia",
		VideoNFT: "0x7c64a9D1004Cc28f3E8a76a61e87cAA4e4c70B19",
		USDC:     "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
	})
}

func TestDefault_Shape(t *testing.T) {
	state := testTemplate()

	if len(state) != 3 {
		t.Fatalf("len(state) = %v, want 3", len(state))
	}
	if _, ok := state[0].(types.LitActionRule); !ok {
		t.Errorf("state[0] is %T, want LitActionRule", state[0])
	}
	op, ok := state[1].(types.OperatorNode)
	if !ok {
		t.Fatalf("state[1] is %T, want OperatorNode", state[1])
	}
	if op.Operator != types.OpAnd {
		t.Errorf("outer operator = %v, want %v", op.Operator, types.OpAnd)
	}

	inner, ok := InnerGroup(state)
	if !ok {
		t.Fatalf("InnerGroup() not found")
	}
	if len(inner.Rules) != 5 {
		t.Fatalf("len(inner.Rules) = %v, want 5", len(inner.Rules))
	}
}

func TestDefault_Anchors(t *testing.T) {
	state := testTemplate()

	if state[0].NodeID() != LitActionRuleID {
		t.Errorf("state[0].NodeID() = %v, want %v", state[0].NodeID(), LitActionRuleID)
	}
	if state[1].NodeID() != OuterOperatorID {
		t.Errorf("state[1].NodeID() = %v, want %v", state[1].NodeID(), OuterOperatorID)
	}

	inner, ok := InnerGroup(state)
	if !ok {
		t.Fatalf("InnerGroup() not found")
	}
	if inner.Rules[0].NodeID() != OwnerRuleID {
		t.Errorf("inner.Rules[0].NodeID() = %v, want %v", inner.Rules[0].NodeID(), OwnerRuleID)
	}
	if inner.Rules[2].NodeID() != PaywallRuleID {
		t.Errorf("inner.Rules[2].NodeID() = %v, want %v", inner.Rules[2].NodeID(), PaywallRuleID)
	}

	user, ok := UserGroup(state)
	if !ok {
		t.Fatalf("UserGroup() not found")
	}
	var groupIDs []string
	for _, n := range user.Rules {
		if g, ok := n.(types.GroupNode); ok {
			groupIDs = append(groupIDs, g.ID)
		}
	}
	want := []string{"erc20-group", "erc721-group", "erc1155-group"}
	if len(groupIDs) != len(want) {
		t.Fatalf("user subgroups = %v, want %v", groupIDs, want)
	}
	for i := range want {
		if groupIDs[i] != want[i] {
			t.Errorf("subgroup[%d] = %v, want %v", i, groupIDs[i], want[i])
		}
	}
}

func TestDefault_PlaceholderTokenIDs(t *testing.T) {
	state := testTemplate()

	inner, _ := InnerGroup(state)
	owner := inner.Rules[0].(types.TokenRule)
	if owner.TokenID != types.TokenPlaceholder {
		t.Errorf("owner TokenID = %q, want placeholder", owner.TokenID)
	}
	if !owner.Owner {
		t.Errorf("owner rule Owner = false, want true")
	}

	paywall := inner.Rules[2].(types.PaywallRule)
	if paywall.TokenID != types.TokenPlaceholder {
		t.Errorf("paywall TokenID = %q, want placeholder", paywall.TokenID)
	}
}

func TestDefault_SatisfiesBalanceInvariants(t *testing.T) {
	state := testTemplate()

	if !checkBalance(t, state) {
		t.Errorf("default template violates operator invariants")
	}
}

func TestDefault_CleanupIsNoOp(t *testing.T) {
	state := testTemplate()

	cleaned := Cleanup(state)
	if len(cleaned) != len(state) {
		t.Fatalf("cleanup changed node count: %v, want %v", len(cleaned), len(state))
	}
	for i := range state {
		if cleaned[i].NodeID() != state[i].NodeID() {
			t.Errorf("cleanup changed node %d: %v, want %v", i, cleaned[i].NodeID(), state[i].NodeID())
		}
	}
}
