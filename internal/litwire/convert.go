// internal/litwire/convert.go
package litwire

import (
	"strconv"

	"github.com/loop/accessctl/internal/rules"
	"github.com/loop/accessctl/internal/types"
)

/*
 * Bidirectional tree <-> wire conversion.
 *
 * ToWire flattens each rule leaf into the verifier's check shape: balanceOf
 * for token and owner rules, a hasPurchasedVideo contract call for paywall
 * rules, and the content-address self check for the lit-action rule. Groups
 * recurse into sub-arrays; a group yielding zero usable conditions vanishes,
 * and operator markers survive only with an emitted condition on both sides.
 * The adjacency check re-validates what the mutation engine already
 * enforces - the converter also runs on trees it did not build.
 *
 * FromWire is a faithful inverse: sub-arrays become groups, markers become
 * operators, and the rule variant is recovered from the leaf shape (self
 * check -> lit action, purchase call -> paywall, standardContractType ->
 * token subtype, with parameter count as fallback). Node ids are freshly
 * generated; equality across a round trip is by content. Owner rules
 * serialize identically to token rules and come back as token rules.
 *
 * The wire format never carries ids, so FromWire re-anchors template-shaped
 * trees: when the top level holds a self check, the first top-level group
 * becomes the inner group and its first nested group the user group. Unlock
 * derivation and token substitution locate those anchors by id.
 */

// Converter carries the deployment constants baked into emitted checks.
type Converter struct {
	Chain           string // camelCased default chain, used by the self check
	PurchaseManager string // purchase-manager contract address
	ActionCID       string // content address of the authorized lit action
}

// ToWire serializes a tree to a unified condition array.
func (cv Converter) ToWire(state types.State) Conditions {
	items := make([]*Condition, 0, len(state))
	for _, n := range state {
		items = append(items, cv.node(n))
	}
	return assemble(items)
}

// node converts a single tree node; nil means the node contributes nothing.
func (cv Converter) node(n types.Node) *Condition {
	switch v := n.(type) {
	case types.GroupNode:
		items := make([]*Condition, 0, len(v.Rules))
		for _, child := range v.Rules {
			items = append(items, cv.node(child))
		}
		sub := assemble(items)
		if len(sub) == 0 {
			return nil
		}
		return &Condition{Sub: sub}

	case types.OperatorNode:
		return &Condition{Operator: string(v.Operator)}

	case types.TokenRule:
		return cv.balanceOf(v)

	case types.PaywallRule:
		return cv.purchaseCheck(v)

	case types.LitActionRule:
		return cv.selfCheck()

	default:
		return nil
	}
}

// assemble drops nil results and keeps operator markers only when flanked
// by emitted conditions. A marker beside a vanished node binds to the
// surviving neighbors instead; consecutive markers collapse to the last.
func assemble(items []*Condition) Conditions {
	out := make(Conditions, 0, len(items))
	var pending *Condition
	for _, c := range items {
		if c == nil {
			continue
		}
		if c.IsOperator() {
			if len(out) > 0 {
				pending = c
			}
			continue
		}
		if pending != nil {
			out = append(out, *pending)
			pending = nil
		}
		out = append(out, *c)
	}
	return out
}

// balanceOf emits the token/owner balance check. ERC20 checks the wallet's
// whole balance; ERC721/ERC1155 pass a token id, defaulting to "0" when the
// rule leaves it open.
func (cv Converter) balanceOf(r types.TokenRule) *Condition {
	params := []string{UserAddressParameter}
	if r.Subtype != types.ERC20 {
		tokenID := r.TokenID
		if tokenID == "" {
			tokenID = "0"
		}
		params = append(params, tokenID)
	}
	return &Condition{
		ConditionType:        ConditionEVMBasic,
		ContractAddress:      r.Contract,
		StandardContractType: string(r.Subtype),
		Chain:                r.Chain,
		Method:               "balanceOf",
		Parameters:           params,
		ReturnValueTest: &ReturnValueTest{
			Comparator: ">=",
			Value:      strconv.FormatInt(r.NumTokens, 10),
		},
	}
}

// purchaseCheck emits the paywall check against the purchase manager.
func (cv Converter) purchaseCheck(r types.PaywallRule) *Condition {
	return &Condition{
		ConditionType:   ConditionEVMContract,
		ContractAddress: cv.PurchaseManager,
		FunctionName:    "hasPurchasedVideo",
		FunctionParams:  []string{UserAddressParameter, r.TokenID},
		FunctionABI: &FunctionABI{
			Inputs: []ABIParam{
				{Type: "address", Name: "user"},
				{Type: "uint256", Name: "tokenId"},
			},
			Name:            "hasPurchasedVideo",
			Outputs:         []ABIParam{{Type: "bool", Name: ""}},
			StateMutability: "view",
			Type:            "function",
		},
		Chain: r.Chain,
		ReturnValueTest: &ReturnValueTest{
			Key:        "",
			Comparator: "=",
			Value:      "true",
		},
	}
}

// selfCheck emits the content-address assertion that pins evaluation to the
// authorized execution environment.
func (cv Converter) selfCheck() *Condition {
	return &Condition{
		ConditionType:   ConditionEVMBasic,
		ContractAddress: "",
		Chain:           cv.Chain,
		Method:          "",
		Parameters:      []string{SelfParameter},
		ReturnValueTest: &ReturnValueTest{
			Comparator: "=",
			Value:      cv.ActionCID,
		},
	}
}

// FromWire rebuilds a tree from a unified condition array, preserving
// nesting and recovering rule variants from leaf shapes.
func (cv Converter) FromWire(conds Conditions) types.State {
	return repairAnchors(cv.fromConditions(conds))
}

func (cv Converter) fromConditions(conds Conditions) types.State {
	state := make(types.State, 0, len(conds))
	for _, c := range conds {
		if n, ok := cv.fromCondition(c); ok {
			state = append(state, n)
		}
	}
	return state
}

// repairAnchors restores the well-known template ids on a recovered tree.
// Only template-shaped trees qualify: the top level must hold a lit-action
// rule. Other trees keep their fresh ids.
func repairAnchors(state types.State) types.State {
	template := false
	for _, n := range state {
		if _, ok := n.(types.LitActionRule); ok {
			template = true
			break
		}
	}
	if !template {
		return state
	}

	for i, n := range state {
		inner, ok := n.(types.GroupNode)
		if !ok {
			continue
		}
		inner.ID = rules.InnerGroupID
		for j, child := range inner.Rules {
			if user, ok := child.(types.GroupNode); ok {
				user.ID = rules.UserGroupID
				nested := clone(inner.Rules)
				nested[j] = user
				inner.Rules = nested
				break
			}
		}
		state[i] = inner
		break
	}
	return state
}

// clone copies one level of a sequence.
func clone(seq types.State) types.State {
	next := make(types.State, len(seq))
	copy(next, seq)
	return next
}

func (cv Converter) fromCondition(c Condition) (types.Node, bool) {
	switch {
	case c.IsGroup():
		return types.GroupNode{ID: types.NewNodeID(), Rules: cv.fromConditions(c.Sub)}, true

	case c.IsOperator():
		op := types.LogicalOperator(c.Operator)
		if op != types.OpAnd && op != types.OpOr {
			return nil, false
		}
		return types.OperatorNode{ID: types.NewNodeID(), Operator: op}, true

	case c.IsSelfCheck():
		return types.LitActionRule{ID: types.NewNodeID()}, true

	case c.ConditionType == ConditionEVMContract && c.FunctionName == "hasPurchasedVideo":
		rule := types.PaywallRule{ID: types.NewNodeID(), Chain: c.Chain}
		if len(c.FunctionParams) > 1 {
			rule.TokenID = c.FunctionParams[1]
		}
		return rule, true

	case c.ConditionType == ConditionEVMBasic:
		return cv.fromBalanceOf(c)

	default:
		return nil, false
	}
}

// fromBalanceOf recovers a token rule from a balance check. The subtype
// comes from standardContractType when present; otherwise a single
// parameter means ERC20 and two mean ERC721. Token ids - including the
// pre-mint placeholder - pass through verbatim.
func (cv Converter) fromBalanceOf(c Condition) (types.Node, bool) {
	subtype := types.TokenSubtype(c.StandardContractType)
	switch subtype {
	case types.ERC20, types.ERC721, types.ERC1155:
	default:
		if len(c.Parameters) > 1 {
			subtype = types.ERC721
		} else {
			subtype = types.ERC20
		}
	}

	rule := types.TokenRule{
		ID:       types.NewNodeID(),
		Subtype:  subtype,
		Chain:    c.Chain,
		Contract: c.ContractAddress,
	}
	if c.ReturnValueTest != nil {
		if n, err := strconv.ParseInt(c.ReturnValueTest.Value, 10, 64); err == nil {
			rule.NumTokens = n
		}
	}
	if subtype != types.ERC20 && len(c.Parameters) > 1 {
		rule.TokenID = c.Parameters[1]
	}
	return rule, true
}
