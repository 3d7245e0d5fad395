// internal/rules/validate.go
package rules

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/loop/accessctl/internal/types"
)

/*
 * Per-subtype rule schemas.
 *
 * ERC20: chain, contract, quantity >= 1. ERC721: chain, contract, optional
 * token id. ERC1155: chain, contract, quantity >= 1, token id required.
 * Paywall rules need a chain. Failures collect into one joined message.
 *
 * Validation gates the save action only. Nodes mid-edit are always
 * constructible, and a token id carrying the pre-mint placeholder passes
 * verbatim (it is substituted out of band, never parsed here).
 */

// ValidateRule checks one rule leaf against its subtype schema. A non-nil
// error joins every field-level message for the rule.
func ValidateRule(n types.Node) error {
	var msgs []string

	switch v := n.(type) {
	case types.TokenRule:
		if v.Chain == "" {
			msgs = append(msgs, "Chain is required")
		}
		if v.Contract == "" {
			msgs = append(msgs, "Contract address is required")
		} else if !strings.HasPrefix(v.Contract, "0x") || !common.IsHexAddress(v.Contract) {
			msgs = append(msgs, "Invalid contract address format")
		}
		switch v.Subtype {
		case types.ERC20:
			if v.NumTokens < 1 {
				msgs = append(msgs, "Number of tokens must be at least 1")
			}
		case types.ERC721:
			// Token id optional.
		case types.ERC1155:
			if v.NumTokens < 1 {
				msgs = append(msgs, "Number of tokens must be at least 1")
			}
			if v.TokenID == "" {
				msgs = append(msgs, "Token ID is required")
			}
		default:
			msgs = append(msgs, fmt.Sprintf("Unknown token subtype %q", v.Subtype))
		}

	case types.PaywallRule:
		if v.Chain == "" {
			msgs = append(msgs, "Chain is required")
		}

	case types.LitActionRule, types.OperatorNode, types.GroupNode:
		// Nothing to check.
	}

	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}

// ValidateState checks every rule leaf in the tree, joining all messages
// into a single error for the caller to surface at save time.
func ValidateState(state types.State) error {
	var msgs []string
	walkRules(state, func(n types.Node) {
		if err := ValidateRule(n); err != nil {
			msgs = append(msgs, err.Error())
		}
	})
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}

// walkRules visits every non-group, non-operator leaf in tree order.
func walkRules(seq types.State, fn func(types.Node)) {
	for _, n := range seq {
		switch v := n.(type) {
		case types.GroupNode:
			walkRules(v.Rules, fn)
		case types.OperatorNode:
		default:
			fn(n)
		}
	}
}
