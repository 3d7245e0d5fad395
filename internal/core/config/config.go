// Package config provides configuration management for accessctl services.
package config

import (
	"strings"
	"time"
	"unicode"
)

// PolicyAPIConfig holds configuration for the HTTP policy API service.
type PolicyAPIConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration

	DatabaseURL string
	RedisURL    string

	Chain     ChainConfig
	Contracts ContractConfig
	ActionCID string
}

// ChainConfig names the chain policies are written against.
type ChainConfig struct {
	Name string // display name, e.g. "Base Sepolia"
}

// ContractConfig holds the platform contract deployments baked into
// templates and emitted conditions.
type ContractConfig struct {
	VideoNFT        string
	USDC            string
	PurchaseManager string
}

// Default deployment values: Base Sepolia with the staging contract set.
// Production overrides every one of these via LOOP_* environment variables
// or the config file.
const (
	defaultChainName       = "Base Sepolia"
	defaultVideoNFT        = "0x7c64a9D1004Cc28f3E8a76a61e87cAA4e4c70B19"
	defaultUSDC            = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
	defaultPurchaseManager = "0x3Ff1bE07bC2b05e28fcbEFa46fA0a9aE6cAfcD73"
	defaultActionCID       = "QmUZfKDuZbzf3jotSKsxsyTxpPqibuUh5R82VzviS16Qmm"
)

// DefaultPolicyAPIConfig returns configuration with default values.
func DefaultPolicyAPIConfig() *PolicyAPIConfig {
	return &PolicyAPIConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		Chain:          ChainConfig{Name: defaultChainName},
		Contracts: ContractConfig{
			VideoNFT:        defaultVideoNFT,
			USDC:            defaultUSDC,
			PurchaseManager: defaultPurchaseManager,
		},
		ActionCID: defaultActionCID,
	}
}

// ChainID returns the camelCased chain identifier used inside conditions,
// e.g. "Base Sepolia" -> "baseSepolia". The verifier matches chains by this
// form, so it must be stable across every place a chain name is written.
func (c *PolicyAPIConfig) ChainID() string {
	return CamelCaseChain(c.Chain.Name)
}

// CamelCaseChain camelCases a chain display name: special characters are
// dropped, words split on spaces and underscores, first word lowercased,
// the rest capitalized.
func CamelCaseChain(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			return r
		}
		return -1
	}, name)

	words := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ' ' || r == '_'
	})

	var b strings.Builder
	for i, w := range words {
		lower := strings.ToLower(w)
		if i == 0 {
			b.WriteString(lower)
			continue
		}
		b.WriteString(strings.ToUpper(lower[:1]))
		b.WriteString(lower[1:])
	}
	return b.String()
}
