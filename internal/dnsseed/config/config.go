// Package config loads dnsseedd's startup configuration: zone identity,
// bind address, and the ambient runtime knobs (logging, stats tuning).
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
)

// AppConfig holds every configuration value dnsseedd needs at startup.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// ZoneHost is the delegated zone apex, e.g. "seed.example.org".
	ZoneHost string `koanf:"zone_host" validate:"required,fqdn"`
	// ZoneNS is the authoritative nameserver advertised in NS/SOA answers.
	ZoneNS string `koanf:"zone_ns" validate:"required,fqdn"`
	// ZoneMbox is the zone contact mailbox in DNS-encoded form. Empty
	// suppresses SOA records entirely.
	ZoneMbox string `koanf:"zone_mbox"`
	// ZoneDataTTL is the TTL, in seconds, attached to A/AAAA answers.
	ZoneDataTTL uint32 `koanf:"zone_data_ttl" validate:"required,gte=1"`
	// ZoneNSTTL is the TTL, in seconds, attached to NS and SOA records.
	ZoneNSTTL uint32 `koanf:"zone_ns_ttl" validate:"required,gte=1"`

	// ZoneFile optionally points at a YAML file overriding the zone_*
	// fields above. Loaded between defaults and environment variables, so
	// the environment always wins.
	ZoneFile string `koanf:"zone_file"`

	// BindAddr is the UDP address the server listens on, "ip:port".
	BindAddr string `koanf:"bind_addr" validate:"required,ip_port"`
	// MaxInFlight bounds how many datagrams the transport processes
	// concurrently.
	MaxInFlight int `koanf:"max_in_flight" validate:"required,gte=1"`

	// PeersFile points at a newline-delimited list of IPv4/IPv6 addresses
	// the default address pool samples from. Empty means no addresses are
	// ever returned, leaving the server to answer with NS/SOA only.
	PeersFile string `koanf:"peers_file"`

	// StatsDBPath is where periodic counter snapshots are persisted.
	// Empty disables snapshotting.
	StatsDBPath string `koanf:"stats_db_path"`
	// TopNamesSize bounds the diagnostic most-queried-names LRU.
	TopNamesSize int `koanf:"top_names_size" validate:"required,gte=1"`
	// UniqueSourcesResetSeconds is how often the unique-source-address
	// cardinality estimator is reset.
	UniqueSourcesResetSeconds int `koanf:"unique_sources_reset_seconds" validate:"required,gte=1"`
	// UniqueSourcesCapacity sizes the unique-source Bloom filter for this
	// many distinct addresses per window before its false-positive rate
	// degrades.
	UniqueSourcesCapacity uint `koanf:"unique_sources_capacity" validate:"required,gte=1"`
	// UniqueSourcesFPRate is the target false-positive rate for the
	// unique-source Bloom filter.
	UniqueSourcesFPRate float64 `koanf:"unique_sources_fp_rate" validate:"required,gt=0,lt=1"`
}

// Zone converts the loaded zone_* fields into a domain.ZoneConfig.
func (c AppConfig) Zone() domain.ZoneConfig {
	return domain.ZoneConfig{
		Host:    c.ZoneHost,
		NS:      c.ZoneNS,
		Mbox:    c.ZoneMbox,
		DataTTL: c.ZoneDataTTL,
		NSTTL:   c.ZoneNSTTL,
	}
}

// defaultAppConfig seeds every field before any file or environment
// override is applied.
var defaultAppConfig = AppConfig{
	Env:                       "prod",
	LogLevel:                  "info",
	ZoneHost:                  "seed.example.org",
	ZoneNS:                    "ns.seed.example.org",
	ZoneDataTTL:               60,
	ZoneNSTTL:                 86400,
	BindAddr:                  "0.0.0.0:53",
	MaxInFlight:               256,
	TopNamesSize:              4096,
	UniqueSourcesResetSeconds: 300,
	UniqueSourcesCapacity:     100000,
	UniqueSourcesFPRate:       0.01,
}

// validIPPort reports whether a field holds a valid "ip:port" address.
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// defaultLoader loads defaultAppConfig into k. A package var so tests can
// substitute it.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(defaultAppConfig, "koanf"), nil)
}

// fileLoader loads the optional YAML zone file at path into k, a no-op if
// path is empty. A package var so tests can substitute it.
var fileLoader = func(k *koanf.Koanf, path string) error {
	if path == "" {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}

// envLoader loads environment variables prefixed DNSSEED_ into k,
// lowercasing keys and stripping the prefix. A package var so tests can
// substitute it.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNSSEED_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DNSSEED_"))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// registerValidation wires the custom ip_port tag into v. A package var so
// tests can substitute it.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load builds an AppConfig from defaults, an optional YAML zone file, and
// environment variables (highest precedence), then validates it.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("dnsseed: loading default config: %w", err)
	}

	if zoneFile, ok := os.LookupEnv("DNSSEED_ZONE_FILE"); ok && zoneFile != "" {
		if err := fileLoader(k, zoneFile); err != nil {
			return nil, fmt.Errorf("dnsseed: loading zone file %s: %w", zoneFile, err)
		}
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("dnsseed: loading environment: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("dnsseed: unmarshaling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("dnsseed: registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("dnsseed: validating config: %w", err)
	}

	return &cfg, nil
}
