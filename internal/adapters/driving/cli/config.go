package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration stored in ~/.docsync/config.toml.

Keys use dot notation, for example search.host or enrichment.token.
Environment variables such as MEILISEARCH_HOST override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. true/false are stored as booleans and
numbers as numbers; everything else is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret [key]",
	Short: "Set a secret without echoing it",
	Long: `Prompts for a secret, such as enrichment.token or search.api_key, and
stores it without echoing it to the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetSecret,
}

// secretInput is where set-secret reads from; tests replace it.
var secretInput io.Reader = os.Stdin

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetSecretCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Engine: %s\n", settings.Engine.Kind.Description())
	cmd.Printf("  Host: %s\n", settings.Engine.Host)
	cmd.Printf("  Index: %s\n", settings.Engine.IndexName)
	cmd.Printf("  API Key: %s\n", maskSecret(settings.Engine.APIKey))
	cmd.Println()

	cmd.Println("[Enrichment]")
	if settings.Enrichment.IsConfigured() {
		cmd.Printf("  Base URL: %s\n", settings.Enrichment.BaseURL)
		cmd.Printf("  Token: %s\n", maskSecret(settings.Enrichment.Token))
		cmd.Printf("  Timeout: %s\n", settings.Enrichment.Timeout)
		cmd.Printf("  Rate: %.1f req/s\n", settings.Enrichment.RequestsPerSecond)
	} else {
		cmd.Println("  Status: not configured")
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  HTTP: %s\n", settings.Server.Addr)
	if settings.Server.MCPAddr != "" {
		cmd.Printf("  MCP: %s\n", settings.Server.MCPAddr)
	}
	cmd.Println()

	sched := settingsService.SchedulerConfig()
	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", sched.Enabled)
	if task, ok := sched.TaskConfigs[domain.TaskIDIndexReconcile]; ok {
		cmd.Printf("  Reconcile: %t every %s\n", task.Enabled, task.Interval)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	if isSecretKey(args[0]) {
		if s, ok := val.(string); ok {
			val = maskSecret(s)
		}
	}
	cmd.Println(val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	if err := configStore.Set(args[0], parseConfigValue(args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigSetSecret(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Enter value for %s: ", args[0])
	secret := readSecret(secretInput)
	cmd.Println()
	if secret == "" {
		return errors.New("empty value, nothing stored")
	}
	if err := configStore.Set(args[0], secret); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Stored %s\n", args[0])
	return nil
}

func parseConfigValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "token") || strings.HasSuffix(key, "api_key")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
