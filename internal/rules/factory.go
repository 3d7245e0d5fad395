// internal/rules/factory.go
package rules

import (
	"github.com/loop/accessctl/internal/types"
)

/*
 * Rule construction.
 *
 * NewRule is the one place rule leaves are built. It takes a partial rule
 * (no identity) plus explicit type/subtype discriminators and returns a
 * fully-formed node with a fresh id, with the field shape narrowed to match
 * the discriminator: ERC20 never carries a token id, ERC1155 always does,
 * ERC721 may. Re-running an edited rule through the factory is how subtype
 * switches (e.g. ERC20 -> ERC721) drop fields that no longer apply.
 *
 * Invalid rules are still constructible here - field schemas are checked by
 * ValidateRule at save time, never mid-edit.
 */

// Spec is a partial rule without identity, as dispatched by the builder UI.
// Type selects the variant; Subtype applies to token and owner rules only.
type Spec struct {
	Type      types.RuleType
	Subtype   types.TokenSubtype
	Chain     string
	Contract  string
	NumTokens int64
	TokenID   string
}

// Update carries a partial edit to an existing rule. Nil fields are left
// unchanged; the merged result is re-run through the factory so the field
// shape stays consistent with the (possibly new) subtype.
type Update struct {
	Subtype   *types.TokenSubtype
	Chain     *string
	Contract  *string
	NumTokens *int64
	TokenID   *string
}

// NewRule builds a rule node from a spec, generating a fresh identifier.
func NewRule(spec Spec) types.Node {
	return newRuleWithID(types.NewNodeID(), spec)
}

// newRuleWithID builds a rule node with an explicit id. Updates preserve the
// original id so references held by the builder stay valid.
func newRuleWithID(id string, spec Spec) types.Node {
	switch spec.Type {
	case types.RuleLitAction:
		return types.LitActionRule{ID: id}

	case types.RulePaywall:
		return types.PaywallRule{
			ID:      id,
			Chain:   spec.Chain,
			TokenID: spec.TokenID,
		}

	default:
		rule := types.TokenRule{
			ID:        id,
			Owner:     spec.Type == types.RuleOwner,
			Subtype:   spec.Subtype,
			Chain:     spec.Chain,
			Contract:  spec.Contract,
			NumTokens: spec.NumTokens,
			TokenID:   spec.TokenID,
		}
		// Narrow the field shape to the subtype.
		if rule.Subtype == types.ERC20 {
			rule.TokenID = ""
		}
		return rule
	}
}

// specOf reconstructs the spec a rule node would have been built from.
func specOf(n types.Node) (Spec, bool) {
	switch v := n.(type) {
	case types.TokenRule:
		return Spec{
			Type:      v.Type(),
			Subtype:   v.Subtype,
			Chain:     v.Chain,
			Contract:  v.Contract,
			NumTokens: v.NumTokens,
			TokenID:   v.TokenID,
		}, true
	case types.PaywallRule:
		return Spec{Type: types.RulePaywall, Chain: v.Chain, TokenID: v.TokenID}, true
	case types.LitActionRule:
		return Spec{Type: types.RuleLitAction}, true
	default:
		return Spec{}, false
	}
}

// applyUpdate merges an update into a spec.
func applyUpdate(spec Spec, u Update) Spec {
	if u.Subtype != nil {
		spec.Subtype = *u.Subtype
	}
	if u.Chain != nil {
		spec.Chain = *u.Chain
	}
	if u.Contract != nil {
		spec.Contract = *u.Contract
	}
	if u.NumTokens != nil {
		spec.NumTokens = *u.NumTokens
	}
	if u.TokenID != nil {
		spec.TokenID = *u.TokenID
	}
	return spec
}
