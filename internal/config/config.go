package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	PrivateKey     string
	PrivateKeyFile string
	Router         string
	Launchpad      string
	Slippage       string
	DeadlineWindow time.Duration
	ApprovalPolicy string
	PollInterval   time.Duration
	AssumeYes      bool
	Journal        string
	PGDSN          string
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("slippage", "0.5%")
	v.SetDefault("deadline-window", 20*time.Minute)
	v.SetDefault("approval-policy", "unlimited")
	v.SetDefault("poll-interval", 3*time.Second)
	v.SetDefault("journal", "./data/trades.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		PrivateKey:     v.GetString("private-key"),
		PrivateKeyFile: v.GetString("private-key-file"),
		Router:         v.GetString("router"),
		Launchpad:      v.GetString("launchpad"),
		Slippage:       v.GetString("slippage"),
		DeadlineWindow: v.GetDuration("deadline-window"),
		ApprovalPolicy: v.GetString("approval-policy"),
		PollInterval:   v.GetDuration("poll-interval"),
		AssumeYes:      v.GetBool("yes"),
		Journal:        v.GetString("journal"),
		PGDSN:          v.GetString("pg-dsn"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}

// ResolvePrivateKey returns the signing key as a hex string, preferring the
// inline value over the key file. The file form keeps the key out of shell
// history and process listings.
func (c Config) ResolvePrivateKey() (string, error) {
	if c.PrivateKey != "" {
		return normalizeKey(c.PrivateKey), nil
	}
	if c.PrivateKeyFile == "" {
		return "", fmt.Errorf("private key is required: set --private-key or --private-key-file")
	}
	raw, err := os.ReadFile(c.PrivateKeyFile)
	if err != nil {
		return "", fmt.Errorf("read private key file: %w", err)
	}
	key := normalizeKey(strings.TrimSpace(string(raw)))
	if key == "" {
		return "", fmt.Errorf("private key file %s is empty", c.PrivateKeyFile)
	}
	return key, nil
}

func normalizeKey(key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, "0x"), "0X")
}
