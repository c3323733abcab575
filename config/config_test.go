package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	cfg := ServiceConfig{}
	cfg.ApplyDefaults()
	if cfg.Name != "httpaccess" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected 'development', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging defaults applied, got level %q", cfg.Logging.Level)
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		wantErr bool
		errMsg  string
	}{
		{"valid development", "development", false, ""},
		{"valid production", "production", false, ""},
		{"invalid environment", "invalid", true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ServiceConfig{Environment: tc.env}
			cfg.Logging.ApplyDefaults()
			err := cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
name: fetcher
environment: staging
logging:
  level: debug
  format: json
`)

	var cfg ServiceConfig
	if err := LoadConfig("fetcher", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "fetcher" {
		t.Errorf("expected name 'fetcher', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging.level 'debug', got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg ServiceConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: [unterminated")
	var cfg ServiceConfig
	if err := LoadConfig("svc", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadPropertiesFromYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
httpAccess:
  proxyHost: proxy.internal
  proxyPort: 3128
  noProxyFor: "*.internal, 10.0.*"
  connectionPoolEnabled: true
`)

	props, err := LoadProperties("svc", WithConfigFile(path), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("LoadProperties failed: %v", err)
	}
	if got := props.GetProperty("httpAccess.proxyHost"); got != "proxy.internal" {
		t.Errorf("proxyHost = %q", got)
	}
	if got := props.GetProperty("httpAccess.proxyPort"); got != "3128" {
		t.Errorf("proxyPort = %q", got)
	}
	if got := props.GetProperty("httpAccess.noProxyFor"); got != "*.internal, 10.0.*" {
		t.Errorf("noProxyFor = %q", got)
	}
	if !props.GetPropertyBool("httpAccess.connectionPoolEnabled", false) {
		t.Error("expected connectionPoolEnabled true")
	}
	if got := props.GetProperty("httpAccess.realm"); got != "" {
		t.Errorf("expected empty value for absent key, got %q", got)
	}
	if !props.GetPropertyBool("httpAccess.absent", true) {
		t.Error("expected default for absent bool")
	}
}

func TestLoadPropertiesEnvOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", `
httpAccess:
  proxyHost: from-file
`)
	t.Setenv("HTTPACCESS_PROXYHOST", "from-env")

	props, err := LoadProperties("svc", WithConfigFile(path), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("LoadProperties failed: %v", err)
	}
	if got := props.GetProperty("httpAccess.proxyHost"); got != "from-env" {
		t.Errorf("expected env override, got %q", got)
	}
}

func TestLoadPropertiesDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "HTTPACCESS_REALM=corp\n")
	t.Cleanup(func() { os.Unsetenv("HTTPACCESS_REALM") })

	props, err := LoadProperties("svc", WithConfigFile("/nonexistent.yml"), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("LoadProperties failed: %v", err)
	}
	if got := props.GetProperty("httpAccess.realm"); got != "corp" {
		t.Errorf("expected realm from .env, got %q", got)
	}
}

func TestMapProperties(t *testing.T) {
	props := MapProperties{
		"a":     "value",
		"on":    "TRUE",
		"off":   "false",
		"weird": "yes",
	}
	if props.GetProperty("a") != "value" {
		t.Error("expected value for a")
	}
	if props.GetProperty("missing") != "" {
		t.Error("expected empty for missing key")
	}

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"on", false, true},
		{"off", true, false},
		{"weird", true, false},
		{"missing", true, true},
		{"missing", false, false},
	}
	for _, tc := range tests {
		if got := props.GetPropertyBool(tc.key, tc.def); got != tc.want {
			t.Errorf("GetPropertyBool(%q, %v) = %v, want %v", tc.key, tc.def, got, tc.want)
		}
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./.env":                  true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file ./.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/svc.yml", EnvFile: "/etc/svc.env"})
	if files.ConfigFile != "/etc/svc.yml" || files.EnvFile != "/etc/svc.env" {
		t.Errorf("explicit paths not honored: %+v", files)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("HTTPACCESS_PROXYHOST")
	want := map[string]bool{"httpaccess_proxyhost": true, "httpaccess.proxyhost": true}
	for _, v := range variants {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, variants)
	}
	if got := generateEnvKeyVariants("PATH"); len(got) != 1 || got[0] != "path" {
		t.Errorf("single-part key variants = %v", got)
	}
}
