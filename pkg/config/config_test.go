package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.App.Env != AppEnvDev {
		t.Fatalf("expected dev default, got %q", cfg.App.Env)
	}
	if !cfg.App.IsDev() || cfg.App.IsProd() {
		t.Fatalf("env predicates disagree with %q", cfg.App.Env)
	}
	if cfg.DB.Path == "" {
		t.Fatal("expected a default sqlite path")
	}
	if cfg.Password.MinLength != 6 {
		t.Fatalf("expected minimum password length 6, got %d", cfg.Password.MinLength)
	}
	if cfg.Alerts.MinOilYieldPercent != 38.0 {
		t.Fatalf("expected min oil yield 38.0, got %v", cfg.Alerts.MinOilYieldPercent)
	}
	if cfg.Alerts.MaxProcessLossPercent != 7.0 {
		t.Fatalf("expected max process loss 7.0, got %v", cfg.Alerts.MaxProcessLossPercent)
	}
	if cfg.Alerts.MaxBreakdownMinutes != 45 {
		t.Fatalf("expected max breakdown 45, got %d", cfg.Alerts.MaxBreakdownMinutes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MILLTRACK_APP_ENV", "prod")
	t.Setenv("MILLTRACK_DB_PATH", "/var/lib/milltrack/data.db")
	t.Setenv("MILLTRACK_ALERT_MIN_OIL_YIELD", "40.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod, got %q", cfg.App.Env)
	}
	if cfg.DB.Path != "/var/lib/milltrack/data.db" {
		t.Fatalf("unexpected db path %q", cfg.DB.Path)
	}
	if cfg.Alerts.MinOilYieldPercent != 40.5 {
		t.Fatalf("unexpected min oil yield %v", cfg.Alerts.MinOilYieldPercent)
	}
}
