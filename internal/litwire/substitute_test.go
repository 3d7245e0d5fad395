package litwire

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/loop/accessctl/internal/types"
)

func TestSubstituteTokenID(t *testing.T) {
	cv := testConverter()
	state := types.State{
		types.TokenRule{
			ID:        "owner",
			Subtype:   types.ERC1155,
			Chain:     "baseSepolia",
			Contract:  "0x7c64a9D1004Cc28f3E8a76a61e87cAA4e4c70B19",
			NumTokens: 1,
			TokenID:   types.TokenPlaceholder,
		},
		types.OperatorNode{ID: "op", Operator: types.OpOr},
		types.PaywallRule{ID: "paywall", Chain: "baseSepolia", TokenID: types.TokenPlaceholder},
	}

	serialized, err := json.Marshal(cv.ToWire(state))
	if err != nil {
		t.Fatalf("Marshal() error = %v, want nil", err)
	}
	if !strings.Contains(string(serialized), types.TokenPlaceholder) {
		t.Fatalf("serialized form missing placeholder: %s", serialized)
	}

	substituted := SubstituteTokenID(serialized, "42")

	if strings.Contains(string(substituted), types.TokenPlaceholder) {
		t.Errorf("placeholder survived substitution: %s", substituted)
	}

	var conds Conditions
	if err := json.Unmarshal(substituted, &conds); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}
	got := cv.FromWire(conds)
	token := got[0].(types.TokenRule)
	if token.TokenID != "42" {
		t.Errorf("owner TokenID = %v, want 42", token.TokenID)
	}
	paywall := got[2].(types.PaywallRule)
	if paywall.TokenID != "42" {
		t.Errorf("paywall TokenID = %v, want 42", paywall.TokenID)
	}
}

func TestSubstituteTokenID_NoPlaceholder(t *testing.T) {
	in := []byte(`[{"parameters":[":userAddress","7"]}]`)
	out := SubstituteTokenID(in, "42")
	if string(out) != string(in) {
		t.Errorf("SubstituteTokenID() = %s, want unchanged input", out)
	}
}
