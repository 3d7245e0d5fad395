package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*PolicyAPIConfig, error) {
	v := viper.New()

	// Defaults matching DefaultPolicyAPIConfig
	v.SetDefault("policy_api.host", "0.0.0.0")
	v.SetDefault("policy_api.port", 8080)
	v.SetDefault("policy_api.request_timeout", "30s")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("chain.name", defaultChainName)
	v.SetDefault("contracts.video_nft", defaultVideoNFT)
	v.SetDefault("contracts.usdc", defaultUSDC)
	v.SetDefault("contracts.purchase_manager", defaultPurchaseManager)
	v.SetDefault("lit.action_cid", defaultActionCID)

	// Bind environment variables with LOOP_ prefix
	v.SetEnvPrefix("LOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &PolicyAPIConfig{
		Host:           v.GetString("policy_api.host"),
		Port:           v.GetInt("policy_api.port"),
		RequestTimeout: v.GetDuration("policy_api.request_timeout"),
		DatabaseURL:    v.GetString("database_url"),
		RedisURL:       v.GetString("redis_url"),
		Chain:          ChainConfig{Name: v.GetString("chain.name")},
		Contracts: ContractConfig{
			VideoNFT:        v.GetString("contracts.video_nft"),
			USDC:            v.GetString("contracts.usdc"),
			PurchaseManager: v.GetString("contracts.purchase_manager"),
		},
		ActionCID: v.GetString("lit.action_cid"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, timeout, and that contract addresses
// and the action CID are present.
func validateConfig(cfg *PolicyAPIConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.Chain.Name == "" {
		return fmt.Errorf("chain.name must not be empty")
	}
	if cfg.Contracts.VideoNFT == "" || cfg.Contracts.USDC == "" || cfg.Contracts.PurchaseManager == "" {
		return fmt.Errorf("all contract addresses must be configured")
	}
	if cfg.ActionCID == "" {
		return fmt.Errorf("lit.action_cid must not be empty")
	}
	return nil
}
