package config

import "testing"

type envFixture struct {
	Addr    string `env:"YOLNEXT_TEST_ADDR" envDefault:":8080"`
	DBPath  string `env:"YOLNEXT_TEST_DB_PATH"`
	Retries int    `env:"YOLNEXT_TEST_RETRIES" envDefault:"3"`
}

func TestParseEnvAppliesDefaults(t *testing.T) {
	t.Setenv("YOLNEXT_TEST_ADDR", "")
	t.Setenv("YOLNEXT_TEST_DB_PATH", "")
	t.Setenv("YOLNEXT_TEST_RETRIES", "")

	var cfg envFixture
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Retries != 3 {
		t.Fatalf("expected default retries, got %d", cfg.Retries)
	}
}

func TestParseEnvReadsValues(t *testing.T) {
	t.Setenv("YOLNEXT_TEST_ADDR", ":9090")
	t.Setenv("YOLNEXT_TEST_DB_PATH", "/tmp/freight.db")
	t.Setenv("YOLNEXT_TEST_RETRIES", "5")

	var cfg envFixture
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.DBPath != "/tmp/freight.db" || cfg.Retries != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
