package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "attention:\n  sti_fund: 500\nstorage:\n  storage_backend: sql\n  dsn: \"file:test.db\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Attention.STIFund != 500 {
		t.Fatalf("sti_fund = %d, want 500", cfg.Attention.STIFund)
	}
	if cfg.Attention.LTIFund != 10000 {
		t.Fatalf("lti_fund should keep default, got %d", cfg.Attention.LTIFund)
	}
	if cfg.Storage.Backend != "sql" {
		t.Fatalf("storage backend = %q, want sql", cfg.Storage.Backend)
	}
	if cfg.Reasoning.ChainStepBudget != 20 {
		t.Fatalf("chain_step_budget should keep default, got %d", cfg.Reasoning.ChainStepBudget)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestValidateRejectsNegativeFund(t *testing.T) {
	cfg := Default()
	cfg.Attention.STIFund = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative fund")
	}
}
