// Package config defines the lease manager's configuration surface and
// loads it with viper, following lloydmeta-tasques/internal/config's
// mapstructure-tagged struct + app/cmd/root.go's load pattern.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// App is the top-level configuration for a lease-manager replica.
type App struct {
	Lease   Lease   `mapstructure:"lease"`
	Consul  Consul  `mapstructure:"consul"`
	Logging Logging `mapstructure:"logging"`
	Metrics Metrics `mapstructure:"metrics"`
}

// Lease holds the options enumerated in the spec: lease duration, the two
// CS paths, and how this replica's own coordinates are formed.
type Lease struct {
	PeriodMs             int64  `mapstructure:"period_ms"`
	LeasePath            string `mapstructure:"lease_path"`
	CurrentTSOPath       string `mapstructure:"current_tso_path"`
	NetworkInterfaceName string `mapstructure:"network_interface_name"`
	Port                 int    `mapstructure:"port"`
}

// Consul configures the coordination-service client.
type Consul struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	Datacenter string `mapstructure:"datacenter"`
}

// Logging configures the ambient zerolog output.
type Logging struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// Metrics configures the prometheus HTTP exposition endpoint.
type Metrics struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// DefaultConfigPaths mirrors tasques' root.go: when no explicit --config
// file is given, Load searches the working directory, a conventional
// ./config subdirectory and /etc/tsoleased for a "tsoleased" config file.
var DefaultConfigPaths = []string{".", "./config", "/etc/tsoleased"}

// Load reads configuration named "tsoleased" from configFile (if
// non-empty) or DefaultConfigPaths, with LEASE_*-style env var overrides,
// and returns the populated App.
func Load(configFile string) (App, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tsoleased")
		for _, p := range DefaultConfigPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return App{}, fmt.Errorf("config: failed to read config file: %w", err)
		}
		// No config file found; proceed with defaults + env vars.
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return App{}, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}
	return app, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lease.period_ms", int64(10*time.Second/time.Millisecond))
	v.SetDefault("lease.lease_path", "/omid/tso-lease")
	v.SetDefault("lease.current_tso_path", "/omid/current-tso")
	v.SetDefault("lease.network_interface_name", "eth0")
	v.SetDefault("lease.port", 54758)
	v.SetDefault("consul.address", "127.0.0.1:8500")
	v.SetDefault("consul.datacenter", "dc1")
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.listen_address", ":9401")
}
