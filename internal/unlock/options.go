// internal/unlock/options.go

// Package unlock derives the flat, user-facing list of ways a viewer can
// satisfy a video's access policy: hold one of the configured tokens, or
// buy the video outright.
package unlock

import (
	"fmt"
	"math/big"

	"github.com/loop/accessctl/internal/rules"
	"github.com/loop/accessctl/internal/types"
	"github.com/shopspring/decimal"
)

// OptionType distinguishes token-gated options from the purchase option.
type OptionType string

const (
	OptionToken   OptionType = "token"
	OptionPayment OptionType = "payment"
)

// TokenDetails describes the holding a token option requires.
type TokenDetails struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount,omitempty"`
}

// Option is one presentable way to unlock a video.
type Option struct {
	ID              string        `json:"id"`
	Type            OptionType    `json:"type"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	ContractAddress string        `json:"contractAddress,omitempty"`
	TokenDetails    *TokenDetails `json:"tokenDetails,omitempty"`
	Price           *big.Int      `json:"price,omitempty"`
}

// Price is the pricing-boundary shape: amounts are USDC minor units
// (6 decimal places) as decimal strings, never floats.
type Price struct {
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	DenominatedSubunits string `json:"denominatedSubunits"`
}

// usdcDecimals is the exponent between USDC minor units and whole dollars.
const usdcDecimals = 6

// Derive walks the canonical tree and returns unlock options in tree order:
// one token option per direct subgroup of the user group, then a single
// payment option when the price amount is positive. A tree without the
// inner/user anchors yields an empty list - the caller treats that as
// still-loading or unconfigured, not as an error.
func Derive(state types.State, price Price) []Option {
	options := []Option{}

	if user, ok := rules.UserGroup(state); ok {
		for _, n := range user.Rules {
			group, ok := n.(types.GroupNode)
			if !ok {
				continue
			}
			options = append(options, tokenOption(group))
		}
	}

	if amount, ok := parseAmount(price.Amount); ok && amount.Sign() > 0 {
		options = append(options, paymentOption(amount))
	}

	return options
}

// tokenOption summarizes one user-group subgroup by its token rule. A
// subgroup without one still yields an option with generic wording, so a
// half-built policy renders rather than disappearing.
func tokenOption(group types.GroupNode) Option {
	opt := Option{
		ID:           group.ID,
		Type:         OptionToken,
		Title:        "Token Access",
		Description:  "Access with token",
		TokenDetails: &TokenDetails{Type: "token"},
	}
	for _, n := range group.Rules {
		rule, ok := n.(types.TokenRule)
		if !ok || rule.Owner {
			continue
		}
		opt.Description = fmt.Sprintf("Access with %s", rule.Subtype)
		opt.ContractAddress = rule.Contract
		opt.TokenDetails = &TokenDetails{Type: string(rule.Subtype), Amount: rule.NumTokens}
		break
	}
	return opt
}

func paymentOption(amount *big.Int) Option {
	usd := decimal.NewFromBigInt(amount, -usdcDecimals)
	return Option{
		ID:          "payment",
		Type:        OptionPayment,
		Title:       "Purchase Video",
		Description: fmt.Sprintf("Buy this video for $%s USDC", usd.StringFixed(0)),
		Price:       amount,
	}
}

// ParseAmount reads a base-10 minor-unit amount string. An empty string
// means unpriced and returns (nil, nil); malformed or negative amounts
// return types.ErrInvalidPrice. Write paths reject bad amounts with this;
// Derive stays tolerant and just omits the payment option.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, types.ErrInvalidPrice
	}
	return amount, nil
}

func parseAmount(s string) (*big.Int, bool) {
	amount, err := ParseAmount(s)
	if err != nil || amount == nil {
		return nil, false
	}
	return amount, true
}
