package vinculo

import "testing"

func TestConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "vinculo.db" {
		t.Errorf("DBPath = %q, want vinculo.db", cfg.DBPath)
	}
	if cfg.BcryptCost != 8 {
		t.Errorf("BcryptCost = %d, want 8", cfg.BcryptCost)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("VINCULO_PORT", "9191")
	t.Setenv("VINCULO_JWT_SECRET", "s3cret")
	t.Setenv("VINCULO_TOKEN_TTL", "1h")

	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret = %q, want s3cret", cfg.JWTSecret)
	}
	if cfg.TokenTTL.Hours() != 1 {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("VINCULO_PORT", "9191")
	t.Setenv("VINCULO_DB_PATH", "env.db")

	cfg, err := parseConfig([]string{"-port", "7777", "-db", "flag.db"})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.Port != 7777 {
		t.Errorf("Port = %d, want flag value 7777", cfg.Port)
	}
	if cfg.DBPath != "flag.db" {
		t.Errorf("DBPath = %q, want flag value flag.db", cfg.DBPath)
	}
}

func TestListenAddr(t *testing.T) {
	if got := listenAddr(8080); got != ":8080" {
		t.Errorf("listenAddr(8080) = %q, want :8080", got)
	}
}
