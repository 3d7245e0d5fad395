// Package types provides the domain model shared across accessctl components.
//
// The access-control tree is a tagged union of node variants: rule leaves
// (token balance, platform-NFT ownership, paywall purchase, lit-action
// attestation), logical operators, and nestable groups. The tree itself is
// never persisted or evaluated here - it is serialized to the unified
// condition wire format in internal/litwire, and evaluation happens in the
// external verifier.
package types

// RuleType discriminates the rule-leaf variants of the tree.
type RuleType string

const (
	RuleToken     RuleType = "token"
	RuleOwner     RuleType = "owner"
	RulePaywall   RuleType = "paywall"
	RuleLitAction RuleType = "litAction"
)

// TokenSubtype identifies the token standard a balance check runs against.
type TokenSubtype string

const (
	ERC20   TokenSubtype = "ERC20"
	ERC721  TokenSubtype = "ERC721"
	ERC1155 TokenSubtype = "ERC1155"
)

// LogicalOperator combines two sibling nodes.
type LogicalOperator string

const (
	OpAnd LogicalOperator = "and"
	OpOr  LogicalOperator = "or"
)

// TokenPlaceholder is the sentinel carried in token-id fields before the
// content's on-chain id is known. An out-of-band process substitutes the real
// id into the serialized wire format; conversions must preserve it verbatim.
const TokenPlaceholder = "TOKEN_PLACEHOLDER"

// Node is one element of an access-control tree. The closed set of
// implementations is TokenRule, PaywallRule, LitActionRule, OperatorNode,
// and GroupNode.
type Node interface {
	NodeID() string
	node()
}

// State is an ordered sequence of nodes at one level of the tree: a mix of
// groups and the operators between them at the top level, or a group's
// contents below it.
type State []Node

// TokenRule requires a wallet to hold tokens of a given standard.
// Owner marks the platform's own NFT-ownership check, which shares this
// shape but is system-managed rather than creator-edited.
//
// Field shape depends on Subtype: ERC20 carries no TokenID, ERC721 an
// optional one, ERC1155 a required one. The rules factory enforces the shape.
type TokenRule struct {
	ID        string
	Owner     bool
	Subtype   TokenSubtype
	Chain     string
	Contract  string
	NumTokens int64
	TokenID   string
}

// PaywallRule requires a recorded one-time purchase of the content,
// checked against the purchase-manager contract on chain.
type PaywallRule struct {
	ID      string
	Chain   string
	TokenID string
}

// LitActionRule marks a policy as satisfiable only inside the one authorized
// execution environment, identified by a fixed content-address constant.
// It has no configurable fields.
type LitActionRule struct {
	ID string
}

// OperatorNode is an and/or combinator between two sibling nodes.
type OperatorNode struct {
	ID       string
	Operator LogicalOperator
}

// GroupNode is a nestable container representing one logical sub-policy.
type GroupNode struct {
	ID    string
	Rules State
}

func (r TokenRule) NodeID() string     { return r.ID }
func (r PaywallRule) NodeID() string   { return r.ID }
func (r LitActionRule) NodeID() string { return r.ID }
func (o OperatorNode) NodeID() string  { return o.ID }
func (g GroupNode) NodeID() string     { return g.ID }

func (TokenRule) node()     {}
func (PaywallRule) node()   {}
func (LitActionRule) node() {}
func (OperatorNode) node()  {}
func (GroupNode) node()     {}

// Type reports the rule-leaf discriminator for a token rule.
func (r TokenRule) Type() RuleType {
	if r.Owner {
		return RuleOwner
	}
	return RuleToken
}

// IsOperator reports whether a node is an operator. The structural
// invariants (no leading/trailing operator, no adjacent operators) are
// phrased in terms of this predicate.
func IsOperator(n Node) bool {
	_, ok := n.(OperatorNode)
	return ok
}

// IsGroup reports whether a node is a group.
func IsGroup(n Node) bool {
	_, ok := n.(GroupNode)
	return ok
}
