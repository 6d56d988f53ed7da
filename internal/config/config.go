// internal/config/config.go
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level runtime configuration.
type Config struct {
	Treasury           string `mapstructure:"treasury"`
	Authority          string `mapstructure:"authority"`
	MigrationAuthority string `mapstructure:"migration_authority"`

	PostgresURL string `mapstructure:"postgres_url"`
	WebhookURL  string `mapstructure:"webhook_url"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	DebugLogging   bool   `mapstructure:"debug_logging"`
	LogFile        string `mapstructure:"log_file"`
	EventBufferLen int    `mapstructure:"event_buffer_len"`

	Protocol Protocol `mapstructure:"protocol"`
}

// Protocol holds the fixed protocol constants the trading engine consumes.
// They are configuration, not business logic: the engine treats every value
// here as given.
type Protocol struct {
	FeeBasisPoints   uint64 `mapstructure:"fee_basis_points"`
	ProtocolFeeShare uint64 `mapstructure:"protocol_fee_share"` // percent of the total fee
	CreatorFeeShare  uint64 `mapstructure:"creator_fee_share"`  // percent of the total fee

	GraduationSolThreshold uint64 `mapstructure:"graduation_sol_threshold"`

	SniperWindowSeconds  int64  `mapstructure:"sniper_window_seconds"`
	SniperMaxBuyLamports uint64 `mapstructure:"sniper_max_buy_lamports"`

	TotalSupply          uint64 `mapstructure:"total_supply"`
	VirtualSolReserves   uint64 `mapstructure:"virtual_sol_reserves"`
	VirtualTokenReserves uint64 `mapstructure:"virtual_token_reserves"`
	RealTokenReserves    uint64 `mapstructure:"real_token_reserves"`
	TokenDecimals        uint8  `mapstructure:"token_decimals"`

	CreationFeeLamports uint64 `mapstructure:"creation_fee_lamports"`
	RentReserveLamports uint64 `mapstructure:"rent_reserve_lamports"`
}

// Defaults mirror the launch parameters the protocol shipped with: 1% fee
// split 80/20, graduation at 85 SOL of real reserves, 1B token supply at 6
// decimals priced against 30 virtual SOL.
const (
	DefaultFeeBasisPoints         = 100
	DefaultProtocolFeeShare       = 80
	DefaultCreatorFeeShare        = 20
	DefaultGraduationSolThreshold = 85_000_000_000
	DefaultSniperWindowSeconds    = 300
	DefaultSniperMaxBuyLamports   = 1_000_000_000
	DefaultTotalSupply            = 1_000_000_000_000_000
	DefaultVirtualSolReserves     = 30_000_000_000
	DefaultVirtualTokenReserves   = 1_073_000_000_000_000
	DefaultRealTokenReserves      = 793_100_000_000_000
	DefaultTokenDecimals          = 6
	DefaultCreationFeeLamports    = 75_000_000
	DefaultRentReserveLamports    = 2_039_280
	DefaultEventBufferLen         = 256
)

// Load reads configuration from path, applies defaults, resolves FUSE_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"event_buffer_len":                  DefaultEventBufferLen,
		"protocol.fee_basis_points":         DefaultFeeBasisPoints,
		"protocol.protocol_fee_share":       DefaultProtocolFeeShare,
		"protocol.creator_fee_share":        DefaultCreatorFeeShare,
		"protocol.graduation_sol_threshold": DefaultGraduationSolThreshold,
		"protocol.sniper_window_seconds":    DefaultSniperWindowSeconds,
		"protocol.sniper_max_buy_lamports":  DefaultSniperMaxBuyLamports,
		"protocol.total_supply":             DefaultTotalSupply,
		"protocol.virtual_sol_reserves":     DefaultVirtualSolReserves,
		"protocol.virtual_token_reserves":   DefaultVirtualTokenReserves,
		"protocol.real_token_reserves":      DefaultRealTokenReserves,
		"protocol.token_decimals":           DefaultTokenDecimals,
		"protocol.creation_fee_lamports":    DefaultCreationFeeLamports,
		"protocol.rent_reserve_lamports":    DefaultRentReserveLamports,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("FUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, Validate(&cfg)
}

// DefaultProtocol returns the shipped protocol parameters.
func DefaultProtocol() Protocol {
	return Protocol{
		FeeBasisPoints:         DefaultFeeBasisPoints,
		ProtocolFeeShare:       DefaultProtocolFeeShare,
		CreatorFeeShare:        DefaultCreatorFeeShare,
		GraduationSolThreshold: DefaultGraduationSolThreshold,
		SniperWindowSeconds:    DefaultSniperWindowSeconds,
		SniperMaxBuyLamports:   DefaultSniperMaxBuyLamports,
		TotalSupply:            DefaultTotalSupply,
		VirtualSolReserves:     DefaultVirtualSolReserves,
		VirtualTokenReserves:   DefaultVirtualTokenReserves,
		RealTokenReserves:      DefaultRealTokenReserves,
		TokenDecimals:          DefaultTokenDecimals,
		CreationFeeLamports:    DefaultCreationFeeLamports,
		RentReserveLamports:    DefaultRentReserveLamports,
	}
}

// Validate checks the configuration for internal consistency.
func Validate(cfg *Config) error {
	if cfg.Treasury == "" {
		return errors.New("missing treasury in configuration")
	}
	if cfg.MigrationAuthority == "" {
		return errors.New("missing migration_authority in configuration")
	}
	return ValidateProtocol(&cfg.Protocol)
}

// ValidateProtocol checks the protocol parameter block.
func ValidateProtocol(p *Protocol) error {
	if p.FeeBasisPoints > 10_000 {
		return errors.New("fee_basis_points cannot exceed 10000")
	}
	if p.ProtocolFeeShare+p.CreatorFeeShare != 100 {
		return errors.New("protocol_fee_share and creator_fee_share must sum to 100")
	}
	if p.VirtualSolReserves == 0 || p.VirtualTokenReserves == 0 {
		return errors.New("virtual reserves must be non-zero")
	}
	if p.RealTokenReserves > p.VirtualTokenReserves {
		return errors.New("real_token_reserves cannot exceed virtual_token_reserves")
	}
	if p.TotalSupply == 0 {
		return errors.New("total_supply must be non-zero")
	}
	if p.RealTokenReserves > p.TotalSupply {
		return errors.New("real_token_reserves cannot exceed total_supply")
	}
	if p.GraduationSolThreshold == 0 {
		return errors.New("graduation_sol_threshold must be non-zero")
	}
	if p.SniperWindowSeconds < 0 {
		return errors.New("invalid sniper_window_seconds")
	}
	return nil
}
