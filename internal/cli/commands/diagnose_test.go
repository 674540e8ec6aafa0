package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/babylog/pkg/config"
)

func TestNewDiagnoseCommand(t *testing.T) {
	cmd := NewDiagnoseCommand()

	if cmd.Use != "diagnose <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	// Check verbose flag exists
	if cmd.Flags().Lookup("verbose") == nil {
		t.Error("Missing verbose flag")
	}
}

func TestCheckConfigExists(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.yaml", "")
	valid := writeFile(t, dir, "config.yaml", "timezone: UTC\n")

	tests := []struct {
		name        string
		path        string
		wantStatus  string
		wantMessage string
	}{
		{"not found", "/nonexistent/config.yaml", "error", "not found"},
		{"empty", empty, "error", "empty"},
		{"directory", dir, "error", "directory"},
		{"found", valid, "ok", "Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkConfigExists(tt.path)
			if result.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", result.Status, tt.wantStatus)
			}
			if !strings.Contains(result.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want containing %q", result.Message, tt.wantMessage)
			}
		})
	}
}

func TestCheckConfigParseable(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		file        string
		content     string
		wantStatus  string
		wantSuggest string
	}{
		{
			name:       "valid yaml",
			file:       "config.yaml",
			content:    "timezone: UTC\n",
			wantStatus: "ok",
		},
		{
			name:        "invalid yaml",
			file:        "bad.yaml",
			content:     "timezone: [unclosed",
			wantStatus:  "error",
			wantSuggest: "YAML",
		},
		{
			name:        "invalid toml",
			file:        "bad.toml",
			content:     "timezone = ",
			wantStatus:  "error",
			wantSuggest: "TOML",
		},
		{
			name:        "unknown timezone",
			file:        "tz.yaml",
			content:     "timezone: Mars/Olympus\n",
			wantStatus:  "error",
			wantSuggest: "IANA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			cfg, result := checkConfigParseable(context.Background(), path)
			if result.Status != tt.wantStatus {
				t.Fatalf("Status = %s (%s), want %s", result.Status, result.Message, tt.wantStatus)
			}
			if tt.wantStatus == "ok" && cfg == nil {
				t.Error("Expected config for ok status")
			}
			if tt.wantSuggest != "" && !strings.Contains(strings.Join(result.Suggests, " "), tt.wantSuggest) {
				t.Errorf("Suggests = %v, want mention of %s", result.Suggests, tt.wantSuggest)
			}
		})
	}
}

func validatedConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	mutate(cfg)
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return cfg
}

func TestCheckTelegram(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantStatus string
	}{
		{"missing token", "", "warning"},
		{"malformed token", "not-a-token", "warning"},
		{"token", "123:abc", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validatedConfig(t, func(c *config.Config) { c.Telegram.Token = tt.token })
			results := checkTelegram(context.Background(), cfg, &DiagnoseOptions{})
			if len(results) != 1 {
				t.Fatalf("len(results) = %d, want 1", len(results))
			}
			if results[0].Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", results[0].Status, tt.wantStatus)
			}
		})
	}
}

func TestCheckTelegram_VerboseConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getMe") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":9,"username":"babylog_bot"}}`))
	}))
	defer server.Close()

	cfg := validatedConfig(t, func(c *config.Config) {
		c.Telegram.Token = "123:abc"
		c.Telegram.APIURL = server.URL
	})

	results := checkTelegram(context.Background(), cfg, &DiagnoseOptions{Verbose: true})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[1].Status != "ok" || !strings.Contains(results[1].Message, "@babylog_bot") {
		t.Errorf("connectivity = %+v", results[1])
	}
}

func TestCheckTracker(t *testing.T) {
	cfg := validatedConfig(t, func(*config.Config) {})
	results := checkTracker(context.Background(), cfg, &DiagnoseOptions{})
	if len(results) != 1 || results[0].Status != "warning" {
		t.Errorf("unconfigured tracker = %+v, want one warning", results)
	}
}

func TestCheckTracker_VerboseConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/oauth/token":
			if err := r.ParseForm(); err != nil || r.Form.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tests := []struct {
		name       string
		password   string
		wantStatus string
		wantMsg    string
	}{
		{"login ok", "secret", "ok", "Logged in"},
		{"login rejected", "wrong", "warning", "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validatedConfig(t, func(c *config.Config) {
				c.Tracker.BaseURL = server.URL
				c.Tracker.Email = "parent@example.com"
				c.Tracker.Password = tt.password
				c.Tracker.ChildID = "kid-1"
			})

			results := checkTracker(context.Background(), cfg, &DiagnoseOptions{Verbose: true})
			if len(results) != 2 {
				t.Fatalf("len(results) = %d, want 2", len(results))
			}
			if results[0].Status != "ok" {
				t.Errorf("settings status = %s", results[0].Status)
			}
			got := results[1]
			if got.Status != tt.wantStatus || !strings.Contains(got.Message, tt.wantMsg) {
				t.Errorf("connectivity = %+v", got)
			}
		})
	}
}

func TestCheckVocabulary(t *testing.T) {
	clean := validatedConfig(t, func(*config.Config) {})
	if got := checkVocabulary(clean, &DiagnoseOptions{}); got.Status != "ok" {
		t.Errorf("default vocabulary status = %s", got.Status)
	}

	colliding := validatedConfig(t, func(c *config.Config) {
		c.Vocab.Pee = []string{"poops"}
	})
	got := checkVocabulary(colliding, &DiagnoseOptions{})
	if got.Status != "warning" {
		t.Fatalf("Status = %s, want warning", got.Status)
	}
	if len(got.Details) != 1 || !strings.Contains(got.Details[0], "poops") {
		t.Errorf("Details = %v", got.Details)
	}
}

func TestRunDiagnose_MissingConfig(t *testing.T) {
	out := captureStdout(t, func() {
		if err := runDiagnose(context.Background(), "/nonexistent/config.yaml", &DiagnoseOptions{}); err != nil {
			t.Errorf("runDiagnose() error = %v", err)
		}
	})

	if !strings.Contains(out, "[FAIL] Config File") {
		t.Errorf("Output missing config failure:\n%s", out)
	}
	if !strings.Contains(out, "Summary: 0 passed, 0 warnings, 1 errors") {
		t.Errorf("Output missing summary:\n%s", out)
	}
}

func TestRunDiagnose_ValidConfig(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.toml", `timezone = "UTC"

[telegram]
token = "123:abc"

[tracker]
base_url = "https://tracker.example.com"
email = "parent@example.com"
password = "secret"
child_id = "kid-1"
`)

	out := captureStdout(t, func() {
		if err := runDiagnose(context.Background(), configPath, &DiagnoseOptions{}); err != nil {
			t.Errorf("runDiagnose() error = %v", err)
		}
	})

	for _, want := range []string{
		"[PASS] Config File",
		"[PASS] Config Syntax",
		"[PASS] Timezone",
		"[PASS] Telegram",
		"[PASS] Tracker",
		"[PASS] Vocabulary",
		"Configuration looks good!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDiagnose_Warnings(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.yaml", "timezone: UTC\n")

	out := captureStdout(t, func() {
		if err := runDiagnose(context.Background(), configPath, &DiagnoseOptions{}); err != nil {
			t.Errorf("runDiagnose() error = %v", err)
		}
	})

	if !strings.Contains(out, "[WARN] Telegram") || !strings.Contains(out, "[WARN] Tracker") {
		t.Errorf("Output missing warnings:\n%s", out)
	}
	if !strings.Contains(out, "usable but has warnings") {
		t.Errorf("Output missing warning summary:\n%s", out)
	}
}

func TestCheckTimezone(t *testing.T) {
	cfg := validatedConfig(t, func(c *config.Config) { c.Timezone = "Asia/Kolkata" })
	got := checkTimezone(cfg)
	if got.Status != "ok" || !strings.Contains(got.Message, "UTC+05:30") {
		t.Errorf("checkTimezone() = %+v", got)
	}
}

func TestCheckConfigExists_RelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "timezone: UTC\n")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if got := checkConfigExists(filepath.Join(".", "config.yaml")); got.Status != "ok" {
		t.Errorf("Status = %s, want ok", got.Status)
	}
}
