package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tendermint/lightivc/ivc"
	tmmath "github.com/tendermint/lightivc/libs/math"
	"github.com/tendermint/lightivc/light"
	"github.com/tendermint/lightivc/types"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	// StrategyLight verifies light blocks with the light client rules.
	StrategyLight = "light"
	// StrategyConsensus verifies extended headers by validator attestation.
	StrategyConsensus = "consensus"
)

// NOTE: Most of the structs & relevant comments + the
// default configuration options were used to manually
// generate the config.toml. Please reflect any changes
// made here in the defaultConfigTemplate constant in
// config/toml.go
// NOTE: libs/cli must know to look in the config dir!
var (
	DefaultLightIVCDir = ".lightivc"
	defaultConfigDir   = "config"
	defaultDataDir     = "data"
	defaultHeadersDir  = "headers"
	defaultProofsDir   = "proofs"

	defaultConfigFileName = "config.toml"
	defaultGenesisName    = "genesis.json"

	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultGenesisPath    = filepath.Join(defaultConfigDir, defaultGenesisName)
)

// Config defines the top level configuration of the prover
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	Prover          *ProverConfig          `mapstructure:"prover" toml:"prover"`
	RPC             *RPCConfig             `mapstructure:"rpc" toml:"rpc"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation" toml:"instrumentation"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Prover:          DefaultProverConfig(),
		RPC:             DefaultRPCConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Prover:          TestProverConfig(),
		RPC:             TestRPCConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	cfg.Prover.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Prover.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [prover] section: %w", err)
	}
	if err := cfg.RPC.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [rpc] section: %w", err)
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration of the prover
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home" toml:"-"`

	// Name the proofs of this chain are stored under
	ChainName string `mapstructure:"chain-name" toml:"chain-name"`

	// Hex encoded verifying key of the step program. Every proof of a chain
	// is made and checked under this key.
	VerifyingKey string `mapstructure:"vkey" toml:"vkey"`

	// Database backend: goleveldb | memdb
	DBBackend string `mapstructure:"db-backend" toml:"db-backend"`

	// Database directory
	DBPath string `mapstructure:"db-dir" toml:"db-dir"`

	// Directory proof files are written to. Empty disables proof files.
	ProofPath string `mapstructure:"proof-dir" toml:"proof-dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level" toml:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format" toml:"log-format"`
}

// DefaultBaseConfig returns a default base configuration
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		ChainName:    "default",
		VerifyingKey: types.VerifyingKeyID{}.String(),
		DBBackend:    "goleveldb",
		DBPath:       defaultDataDir,
		ProofPath:    defaultProofsDir,
		LogLevel:     DefaultLogLevel,
		LogFormat:    LogFormatPlain,
	}
}

// TestBaseConfig returns a base configuration for testing
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.ChainName = "test"
	cfg.DBBackend = "memdb"
	return cfg
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ProofDir returns the full path to the proof directory, or "" if proof
// files are disabled.
func (cfg BaseConfig) ProofDir() string {
	if cfg.ProofPath == "" {
		return ""
	}
	return rootify(cfg.ProofPath, cfg.RootDir)
}

// VKey parses the verifying key.
func (cfg BaseConfig) VKey() (types.VerifyingKeyID, error) {
	return types.ParseVerifyingKeyID(cfg.VerifyingKey)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.New("unknown log-format (must be 'plain' or 'json')")
	}
	if cfg.ChainName == "" {
		return errors.New("chain-name can't be empty")
	}
	if _, err := cfg.VKey(); err != nil {
		return fmt.Errorf("invalid vkey: %w", err)
	}
	return nil
}

// DefaultLogLevel is the default log level
const DefaultLogLevel = "info"

//-----------------------------------------------------------------------------
// ProverConfig

// ProverConfig defines how headers are verified and where they are read
// from.
type ProverConfig struct {
	RootDir string `mapstructure:"home" toml:"-"`

	// Header verification strategy: light | consensus
	Strategy string `mapstructure:"strategy" toml:"strategy"`

	// Light client trust threshold, as a fraction
	TrustLevel string `mapstructure:"trust-level" toml:"trust-level"`

	// How long a trusted header may be used to verify its successors
	TrustingPeriod time.Duration `mapstructure:"trusting-period" toml:"trusting-period"`

	// How far into the future a header time may be
	ClockDrift time.Duration `mapstructure:"clock-drift" toml:"clock-drift"`

	// Added to a header time to get the time it is verified at
	VerifySkew time.Duration `mapstructure:"verify-skew" toml:"verify-skew"`

	// Directory of header files named by height
	HeadersPath string `mapstructure:"headers-dir" toml:"headers-dir"`

	// Header file the chain is rooted at
	Genesis string `mapstructure:"genesis-file" toml:"genesis-file"`
}

// DefaultProverConfig returns a default prover configuration
func DefaultProverConfig() *ProverConfig {
	return &ProverConfig{
		Strategy:       StrategyLight,
		TrustLevel:     light.DefaultTrustLevel.String(),
		TrustingPeriod: light.DefaultTrustingPeriod,
		ClockDrift:     light.DefaultClockDrift,
		VerifySkew:     ivc.DefaultVerifySkew,
		HeadersPath:    defaultHeadersDir,
		Genesis:        defaultGenesisPath,
	}
}

// TestProverConfig returns a prover configuration for testing
func TestProverConfig() *ProverConfig {
	return DefaultProverConfig()
}

// HeadersDir returns the full path to the header directory
func (cfg *ProverConfig) HeadersDir() string {
	return rootify(cfg.HeadersPath, cfg.RootDir)
}

// GenesisFile returns the full path to the genesis header file
func (cfg *ProverConfig) GenesisFile() string {
	return rootify(cfg.Genesis, cfg.RootDir)
}

// LightOptions returns the light client options.
func (cfg *ProverConfig) LightOptions() (light.Options, error) {
	trustLevel, err := tmmath.ParseFraction(cfg.TrustLevel)
	if err != nil {
		return light.Options{}, fmt.Errorf("invalid trust-level: %w", err)
	}
	opts := light.Options{
		TrustThreshold: trustLevel,
		TrustingPeriod: cfg.TrustingPeriod,
		ClockDrift:     cfg.ClockDrift,
	}
	return opts, opts.ValidateBasic()
}

// NewStrategy returns the configured verification strategy.
func (cfg *ProverConfig) NewStrategy() (ivc.Strategy, error) {
	switch cfg.Strategy {
	case StrategyLight:
		opts, err := cfg.LightOptions()
		if err != nil {
			return nil, err
		}
		return ivc.LightClientStrategy{Options: opts, Skew: cfg.VerifySkew}, nil
	case StrategyConsensus:
		return ivc.ConsensusStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (must be %q or %q)", cfg.Strategy, StrategyLight, StrategyConsensus)
	}
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ProverConfig) ValidateBasic() error {
	if _, err := cfg.NewStrategy(); err != nil {
		return err
	}
	if cfg.VerifySkew < 0 {
		return errors.New("verify-skew can't be negative")
	}
	if cfg.HeadersPath == "" {
		return errors.New("headers-dir can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// RPCConfig

// RPCConfig defines the node headers are fetched from.
type RPCConfig struct {
	// Chain the primary serves
	ChainID string `mapstructure:"chain-id" toml:"chain-id"`

	// RPC address of the primary
	Primary string `mapstructure:"primary" toml:"primary"`

	// Timeout of one request
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`

	// Maximum number of requests in flight
	Concurrency int `mapstructure:"concurrency" toml:"concurrency"`
}

// DefaultRPCConfig returns a default RPC configuration
func DefaultRPCConfig() *RPCConfig {
	return &RPCConfig{
		Primary:     "tcp://127.0.0.1:26657",
		Timeout:     10 * time.Second,
		Concurrency: 4,
	}
}

// TestRPCConfig returns a RPC configuration for testing
func TestRPCConfig() *RPCConfig {
	cfg := DefaultRPCConfig()
	cfg.ChainID = "test-chain"
	cfg.Timeout = time.Second
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *RPCConfig) ValidateBasic() error {
	if cfg.Timeout < 0 {
		return errors.New("timeout can't be negative")
	}
	if cfg.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if len(cfg.ChainID) > types.MaxChainIDLen {
		return fmt.Errorf("chain-id is too long, max %d", types.MaxChainIDLen)
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	Prometheus bool `mapstructure:"prometheus" toml:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus-listen-addr" toml:"prometheus-listen-addr"`

	// Maximum number of simultaneous connections.
	// 0 - unlimited.
	MaxOpenConnections int `mapstructure:"max-open-connections" toml:"max-open-connections"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace" toml:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		MaxOpenConnections:   3,
		Namespace:            "lightivc",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.MaxOpenConnections < 0 {
		return errors.New("max-open-connections can't be negative")
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
