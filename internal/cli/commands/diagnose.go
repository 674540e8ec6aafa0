package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/babylog/pkg/config"
	"github.com/ccollicutt/babylog/pkg/telegram"
	"github.com/ccollicutt/babylog/pkg/tracker"
)

// connectivityTimeout bounds each network check run with --verbose.
const connectivityTimeout = 5 * time.Second

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and structure
- Timezone
- Telegram bot token and allowed chats
- Tracker settings
- Vocabulary keywords that fuzzily collide across categories

With --verbose it also contacts Telegram (getMe) and logs in to the tracker.

Example:
  babylog diagnose config.yaml
  babylog diagnose -v config.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show details and test connectivity")

	return cmd
}

func runDiagnose(ctx context.Context, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts)
		return nil
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(results, opts)
		return nil
	}

	// 3. Timezone
	results = append(results, checkTimezone(cfg))

	// 4. Telegram
	results = append(results, checkTelegram(ctx, cfg, opts)...)

	// 5. Tracker
	results = append(results, checkTracker(ctx, cfg, opts)...)

	// 6. Vocabulary
	results = append(results, checkVocabulary(cfg, opts))

	printDiagnostics(results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Copy config.example.yaml and fill in your settings",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Copy config.example.yaml and fill in your settings",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		switch {
		case strings.Contains(err.Error(), "yaml"):
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		case strings.Contains(err.Error(), "toml"):
			result.Suggests = []string{
				"Check TOML syntax - strings must be quoted and tables written as [section]",
			}
		case strings.Contains(err.Error(), "timezone"):
			result.Suggests = []string{
				"Use an IANA zone name such as Europe/Berlin or America/Toronto",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	return cfg, result
}

func checkTimezone(cfg *config.Config) DiagnosticResult {
	now := time.Now().In(cfg.Location())
	name, offset := now.Zone()
	return DiagnosticResult{
		Check:   "Timezone",
		Status:  "ok",
		Message: fmt.Sprintf("%s (currently %s, UTC%+03d:%02d)", cfg.Location(), name, offset/3600, abs(offset%3600)/60),
	}
}

func checkTelegram(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}
	tc := cfg.Telegram

	result := DiagnosticResult{
		Check: "Telegram",
	}
	switch {
	case tc.Token == "":
		result.Status = "warning"
		result.Message = "No bot token configured (required by serve)"
		result.Suggests = []string{
			fmt.Sprintf("Set telegram.token or the %s environment variable", config.EnvTelegramToken),
		}
	case !strings.Contains(tc.Token, ":"):
		result.Status = "warning"
		result.Message = "Token does not look like a bot token (expected <id>:<secret>)"
	default:
		result.Status = "ok"
		result.Message = "Token configured"
		if len(tc.AllowedChats) == 0 {
			result.Details = append(result.Details, "Allowed chats: all")
		} else {
			result.Details = append(result.Details, fmt.Sprintf("Allowed chats: %v", tc.AllowedChats))
		}
		result.Details = append(result.Details, fmt.Sprintf("API URL: %s", tc.APIURL))
	}
	results = append(results, result)

	if opts.Verbose && result.Status == "ok" {
		results = append(results, checkTelegramConnectivity(ctx, tc))
	}
	return results
}

func checkTelegramConnectivity(ctx context.Context, tc config.TelegramConfig) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Telegram Connectivity",
	}

	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	client := telegram.NewClient(tc.Token, telegram.WithAPIURL(tc.APIURL), telegram.WithTimeout(connectivityTimeout))
	me, err := client.GetMe(ctx)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("getMe failed: %v", err)
		result.Suggests = []string{
			"Check the bot token with @BotFather",
			"Verify network connectivity",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Bot @%s (id %d)", me.Username, me.ID)
	return result
}

func checkTracker(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}
	tc := cfg.Tracker

	if !tc.Enabled() {
		results = append(results, DiagnosticResult{
			Check:   "Tracker",
			Status:  "warning",
			Message: "No tracker configured (required by serve)",
			Suggests: []string{
				"Add a tracker section with base_url, email, password and child_id",
			},
		})
		return results
	}

	result := DiagnosticResult{
		Check:   "Tracker",
		Status:  "ok",
		Message: fmt.Sprintf("%s (child %s)", tc.BaseURL, tc.ChildID),
	}
	if opts.Verbose {
		result.Details = []string{
			fmt.Sprintf("Token URL: %s", tc.TokenURL),
			fmt.Sprintf("Timeout: %s", tc.Timeout),
			fmt.Sprintf("Max retries: %d", tc.MaxRetries),
		}
		if tc.ClientID != "" {
			result.Details = append(result.Details, fmt.Sprintf("Client ID: %s", tc.ClientID))
		}
	}
	results = append(results, result)

	if opts.Verbose {
		results = append(results, checkTrackerConnectivity(ctx, tc))
	}
	return results
}

func checkTrackerConnectivity(ctx context.Context, tc config.TrackerConfig) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Tracker Connectivity",
	}

	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	ts, err := tracker.Login(ctx, tracker.Credentials{
		TokenURL:     tc.TokenURL,
		ClientID:     tc.ClientID,
		ClientSecret: tc.ClientSecret,
		Email:        tc.Email,
		Password:     tc.Password,
	})
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Login failed: %v", err)
		result.Suggests = []string{
			"Check tracker email, password and client credentials",
			"Verify token_url points at the OAuth2 token endpoint",
		}
		return result
	}

	client := tracker.New(tc.BaseURL, tc.ChildID, ts, tracker.WithTimeout(connectivityTimeout))
	if err := client.Ping(ctx); err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Logged in, but base URL unreachable: %v", err)
		return result
	}

	result.Status = "ok"
	result.Message = "Logged in and reachable"
	return result
}

func checkVocabulary(cfg *config.Config, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Vocabulary",
	}

	collisions := cfg.Vocabulary().Collisions()
	if len(collisions) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d keyword collision(s) across categories", len(collisions))
		for _, c := range collisions {
			result.Details = append(result.Details, c.String())
		}
		result.Suggests = []string{
			"A line containing one of these words will be classified under both categories",
			"Remove or rename the added keyword",
		}
		return result
	}

	result.Status = "ok"
	result.Message = "No keyword collisions"
	if opts.Verbose {
		for _, ext := range []struct {
			name  string
			count int
		}{
			{"sides", len(cfg.Vocab.Sides)},
			{"feed_types", len(cfg.Vocab.FeedTypes)},
			{"pee", len(cfg.Vocab.Pee)},
			{"poo", len(cfg.Vocab.Poo)},
			{"sleep", len(cfg.Vocab.Sleep)},
		} {
			if ext.count > 0 {
				result.Details = append(result.Details, fmt.Sprintf("Added %s: %d", ext.name, ext.count))
			}
		}
	}
	return result
}

func printDiagnostics(results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Println("=== babylog Configuration Diagnostics ===")
	fmt.Println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Printf("[%s] %s\n", icon, r.Check)
		fmt.Printf("    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Printf("      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Printf("      Hint: %s\n", s)
		}

		fmt.Println()
	}

	// Summary
	fmt.Println("---")
	fmt.Printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Println("\nFix the errors above before starting the server.")
	} else if warnCount > 0 {
		fmt.Println("\nConfiguration is usable but has warnings.")
	} else {
		fmt.Println("\nConfiguration looks good!")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
