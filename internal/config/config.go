// Package config loads the TOML-backed configuration shared by cmd/gsc and
// cmd/gscd, following the toml.Unmarshal pattern internal/tqw uses for its
// own TOML-based data files.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
)

// Config is the full set of settings either the CLI driver or the
// compile-as-a-service daemon may load from a gsc.toml file. cmd/gsc only
// ever reads StrictPackageNames; Daemon is cmd/gscd's own section.
type Config struct {
	Daemon DaemonConfig `toml:"daemon"`

	// StrictPackageNames, when true, rejects package names that are
	// syntactically valid but not in the Unicode "title case" form the
	// analyzer's package-name check prefers (see internal/sema).
	StrictPackageNames bool `toml:"strict_package_names"`
}

// DaemonConfig holds cmd/gscd's listen address, JWT signing secret, and
// compile-log storage path.
type DaemonConfig struct {
	ListenAddr string `toml:"listen_addr"`
	JWTSecret  string `toml:"jwt_secret"`
	SQLitePath string `toml:"sqlite_path"`

	// APIKeyHashes holds bcrypt hashes of the daemon's accepted API keys.
	// Plaintext keys are never stored in the config file itself.
	APIKeyHashes []string `toml:"api_key_hashes"`
}

// Default returns the configuration used when no file is present at the
// requested path.
func Default() Config {
	return Config{
		Daemon: DaemonConfig{
			ListenAddr: ":8080",
			SQLitePath: "gscd.db",
		},
		StrictPackageNames: true,
	}
}

// Load reads and decodes the TOML file at path over top of Default(). A
// missing file is not an error; Default() is returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}

	return cfg, nil
}

// ApplyOverride assigns value, coerced via spf13/cast, to the field named
// by key (the field's TOML key, e.g. "daemon.listen_addr"). Neither
// cmd/gsc nor cmd/gscd has a flag that calls it. TOML decodes every scalar
// into its already-typed Go field directly, but an override arrives as a
// bare string and needs the same lenient coercion cast.ToBoolE/ToStringE give a
// value decoded into an `any` from an untyped source.
func (c *Config) ApplyOverride(key, value string) error {
	switch key {
	case "daemon.listen_addr":
		c.Daemon.ListenAddr = value
	case "daemon.jwt_secret":
		c.Daemon.JWTSecret = value
	case "daemon.sqlite_path":
		c.Daemon.SQLitePath = value
	case "strict_package_names":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("override %q: %w", key, err)
		}
		c.StrictPackageNames = b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
