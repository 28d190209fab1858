package seed

import (
	"fmt"
	"strconv"
	"strings"
)

type LookupFunc func(string) (string, bool)

// Target is a destination the seeded dataset is written to.
type Target string

const (
	TargetPostgres Target = "postgres"
	TargetParquet  Target = "parquet"
)

type Config struct {
	Seed      int64
	Products  int
	Customers int
	Sales     int
	Days      int
	Targets   []Target
}

func DefaultConfig() Config {
	return Config{
		Seed:      20240101,
		Products:  24,
		Customers: 60,
		Sales:     2000,
		Days:      365,
		Targets:   []Target{TargetPostgres},
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyInt64(lookup, "BIZLENS_SEED_VALUE", &cfg.Seed); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "BIZLENS_SEED_PRODUCTS", &cfg.Products); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "BIZLENS_SEED_CUSTOMERS", &cfg.Customers); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "BIZLENS_SEED_SALES", &cfg.Sales); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "BIZLENS_SEED_DAYS", &cfg.Days); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("BIZLENS_SEED_TARGETS"); ok {
		targets, err := ParseTargets(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Targets = targets
	}

	if cfg.Products <= 0 {
		return Config{}, fmt.Errorf("BIZLENS_SEED_PRODUCTS must be > 0")
	}
	if cfg.Customers <= 0 {
		return Config{}, fmt.Errorf("BIZLENS_SEED_CUSTOMERS must be > 0")
	}
	if cfg.Sales < 0 {
		return Config{}, fmt.Errorf("BIZLENS_SEED_SALES must be >= 0")
	}
	if cfg.Days <= 0 {
		return Config{}, fmt.Errorf("BIZLENS_SEED_DAYS must be > 0")
	}
	return cfg, nil
}

// ParseTargets reads a comma separated target list such as "postgres,parquet".
func ParseTargets(raw string) ([]Target, error) {
	var targets []Target
	seen := map[Target]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		target := Target(strings.ToLower(strings.TrimSpace(part)))
		if target == "" {
			continue
		}
		switch target {
		case TargetPostgres, TargetParquet:
		default:
			return nil, fmt.Errorf("unknown seed target %q", target)
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one seed target is required")
	}
	return targets, nil
}

func (c Config) HasTarget(target Target) bool {
	for _, candidate := range c.Targets {
		if candidate == target {
			return true
		}
	}
	return false
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
