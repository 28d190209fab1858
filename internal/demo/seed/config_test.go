package seed

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapLookup(nil))
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Products != 24 || cfg.Customers != 60 || cfg.Sales != 2000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.HasTarget(TargetPostgres) || cfg.HasTarget(TargetParquet) {
		t.Fatalf("Targets = %v", cfg.Targets)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapLookup(map[string]string{
		"BIZLENS_SEED_VALUE":     "7",
		"BIZLENS_SEED_PRODUCTS":  "5",
		"BIZLENS_SEED_CUSTOMERS": "3",
		"BIZLENS_SEED_SALES":     "10",
		"BIZLENS_SEED_DAYS":      "30",
		"BIZLENS_SEED_TARGETS":   "parquet, postgres, parquet",
	}))
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Seed != 7 || cfg.Products != 5 || cfg.Customers != 3 || cfg.Sales != 10 || cfg.Days != 30 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Targets) != 2 || cfg.Targets[0] != TargetParquet {
		t.Fatalf("Targets = %v", cfg.Targets)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad int":       {"BIZLENS_SEED_SALES": "many"},
		"zero products": {"BIZLENS_SEED_PRODUCTS": "0"},
		"zero days":     {"BIZLENS_SEED_DAYS": "0"},
		"bad target":    {"BIZLENS_SEED_TARGETS": "mysql"},
		"empty targets": {"BIZLENS_SEED_TARGETS": " , "},
	}
	for name, env := range cases {
		if _, err := LoadConfigFromEnv(mapLookup(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}
