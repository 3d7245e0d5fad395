// internal/rules/anchors.go
package rules

import (
	"github.com/loop/accessctl/internal/types"
)

/*
 * Template anchors.
 *
 * The canonical policy tree carries two structural anchors with well-known
 * fixed ids: the inner group (always present, holds the owner, paywall, and
 * user-choice branches) and, nested inside it, the user group (the only
 * subtree creators edit through the builder). Everything that needs to
 * locate them goes through this file; the id strings appear nowhere else.
 */

// Fixed identifiers of the canonical template nodes.
const (
	LitActionRuleID = "lit-action-rule"
	OuterOperatorID = "outer-operator"
	InnerGroupID    = "inner-group"
	OwnerRuleID     = "owner-rule"
	InnerOperatorID = "inner-operator"
	PaywallRuleID   = "paywall-rule"
	UserGroupID     = "user-group"
)

// FindGroup returns the group with the given id among the direct children
// of a sequence.
func FindGroup(seq types.State, id string) (types.GroupNode, bool) {
	for _, n := range seq {
		if g, ok := n.(types.GroupNode); ok && g.ID == id {
			return g, true
		}
	}
	return types.GroupNode{}, false
}

// InnerGroup locates the always-present inner group at the top level.
func InnerGroup(state types.State) (types.GroupNode, bool) {
	return FindGroup(state, InnerGroupID)
}

// UserGroup locates the creator-editable user group inside the inner group.
func UserGroup(state types.State) (types.GroupNode, bool) {
	inner, ok := InnerGroup(state)
	if !ok {
		return types.GroupNode{}, false
	}
	return FindGroup(inner.Rules, UserGroupID)
}
