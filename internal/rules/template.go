// internal/rules/template.go
package rules

import (
	"github.com/loop/accessctl/internal/types"
)

/*
 * Canonical policy template.
 *
 * Every protected video starts from the same tree:
 *
 *   lit-action-rule AND inner-group(
 *       owner-rule OR paywall-rule OR user-group(
 *           erc20-group OR erc721-group OR erc1155-group))
 *
 * The lit-action rule pins the policy to the authorized execution
 * environment; the owner and paywall branches are system-managed; the user
 * group holds one example subgroup per token standard for the builder to
 * edit. Token ids are the pre-mint placeholder until the video's on-chain id
 * exists.
 */

// TemplateConfig supplies the chain identifier and contract addresses baked
// into a fresh template.
type TemplateConfig struct {
	Chain    string // camelCased chain name, e.g. "baseSepolia"
	VideoNFT string // platform video NFT contract
	USDC     string // USDC contract for the ERC20 example rule
}

// Default builds the canonical policy tree for a new video.
func Default(cfg TemplateConfig) types.State {
	return types.State{
		types.LitActionRule{ID: LitActionRuleID},
		types.OperatorNode{ID: OuterOperatorID, Operator: types.OpAnd},
		types.GroupNode{
			ID: InnerGroupID,
			Rules: types.State{
				types.TokenRule{
					ID:        OwnerRuleID,
					Owner:     true,
					Subtype:   types.ERC1155,
					Chain:     cfg.Chain,
					Contract:  cfg.VideoNFT,
					TokenID:   types.TokenPlaceholder,
					NumTokens: 1,
				},
				types.OperatorNode{ID: InnerOperatorID, Operator: types.OpOr},
				types.PaywallRule{
					ID:      PaywallRuleID,
					Chain:   cfg.Chain,
					TokenID: types.TokenPlaceholder,
				},
				types.OperatorNode{ID: types.NewNodeID(), Operator: types.OpOr},
				types.GroupNode{
					ID: UserGroupID,
					Rules: types.State{
						types.GroupNode{
							ID: "erc20-group",
							Rules: types.State{
								types.TokenRule{
									ID:        "erc20-rule",
									Subtype:   types.ERC20,
									Chain:     cfg.Chain,
									Contract:  cfg.USDC,
									NumTokens: 1000000, // 1 USDC
								},
							},
						},
						types.OperatorNode{ID: types.NewNodeID(), Operator: types.OpOr},
						types.GroupNode{
							ID: "erc721-group",
							Rules: types.State{
								types.TokenRule{
									ID:        "erc721-rule",
									Subtype:   types.ERC721,
									Chain:     cfg.Chain,
									Contract:  cfg.VideoNFT,
									TokenID:   "1",
									NumTokens: 1,
								},
							},
						},
						types.OperatorNode{ID: types.NewNodeID(), Operator: types.OpOr},
						types.GroupNode{
							ID: "erc1155-group",
							Rules: types.State{
								types.TokenRule{
									ID:        "erc1155-rule",
									Subtype:   types.ERC1155,
									Chain:     cfg.Chain,
									Contract:  cfg.VideoNFT,
									TokenID:   "2",
									NumTokens: 1,
								},
							},
						},
					},
				},
			},
		},
	}
}
