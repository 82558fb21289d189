package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/atomicfile"
	"github.com/mitchellh/mapstructure"

	tmos "github.com/tendermint/lightivc/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, data, header and proof directories if
// they don't exist.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{"", defaultConfigDir, defaultDataDir, defaultHeadersDir, defaultProofsDir} {
		if err := tmos.EnsureDir(filepath.Join(rootDir, dir), defaultDirPerm); err != nil {
			return err
		}
	}
	return nil
}

// ConfigFile returns the path of the config file under rootDir.
func ConfigFile(rootDir string) string {
	return filepath.Join(rootDir, defaultConfigFilePath)
}

// WriteConfigFile renders config using the template and writes it to the
// config file under rootDir.
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(ConfigFile(rootDir))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	_, err := atomicfile.WriteAll(path, &buffer, 0644)
	return err
}

// ReadConfigFile parses the config file at path on top of the defaults.
// Keys the config does not know are an error.
func ReadConfigFile(path string) (*Config, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := DefaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/lightivc/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.lightivc" by default, but could be changed via $LIGHTIVC_HOME env
# variable or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Name the proofs of this chain are stored under
chain-name = "{{ .BaseConfig.ChainName }}"

# Hex encoded verifying key of the step program
vkey = "{{ .BaseConfig.VerifyingKey }}"

# Database backend: goleveldb | memdb
db-backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db-dir = "{{ js .BaseConfig.DBPath }}"

# Directory proof files are written to. Leave empty to keep proofs in the
# database only.
proof-dir = "{{ js .BaseConfig.ProofPath }}"

# Output level for logging: trace | debug | info | warn | error
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

#######################################################################
###                   Prover Configuration Options                  ###
#######################################################################
[prover]

# Header verification strategy: light | consensus
strategy = "{{ .Prover.Strategy }}"

# Fraction of the trusted voting power that must sign a non-adjacent header
trust-level = "{{ .Prover.TrustLevel }}"

# How long a trusted header may be used to verify its successors
trusting-period = "{{ .Prover.TrustingPeriod }}"

# How far into the future a header time may be
clock-drift = "{{ .Prover.ClockDrift }}"

# Added to a header time to get the time it is verified at
verify-skew = "{{ .Prover.VerifySkew }}"

# Directory of header files named by height
headers-dir = "{{ js .Prover.HeadersPath }}"

# Header file the chain is rooted at
genesis-file = "{{ js .Prover.Genesis }}"

#######################################################################
###                      RPC Configuration Options                  ###
#######################################################################
[rpc]

# Chain the primary serves
chain-id = "{{ .RPC.ChainID }}"

# RPC address of the primary
primary = "{{ .RPC.Primary }}"

# Timeout of one request
timeout = "{{ .RPC.Timeout }}"

# Maximum number of requests in flight
concurrency = {{ .RPC.Concurrency }}

#######################################################################
###                 Instrumentation Configuration Options           ###
#######################################################################
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus-listen-addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Maximum number of simultaneous connections.
# 0 - unlimited.
max-open-connections = {{ .Instrumentation.MaxOpenConnections }}

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`

/****** these are for test settings ***********/

// ResetTestRoot creates a fresh home directory under the system temp
// directory with a test config and returns the config rooted there.
func ResetTestRoot(testName string) (*Config, error) {
	rootDir, err := os.MkdirTemp("", fmt.Sprintf("%s-%s_", "lightivc", testName))
	if err != nil {
		return nil, err
	}
	if err := EnsureRoot(rootDir); err != nil {
		return nil, err
	}

	cfg := TestConfig().SetRoot(rootDir)
	if err := WriteConfigFile(rootDir, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
