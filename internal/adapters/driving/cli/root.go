// Package cli implements the docsync command line.
//
// Commands reach the core only through driving ports, which main wires in
// with SetServices before calling Execute.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// version is set by SetVersion.
var version = "dev"

// KeyValueStore reads and writes raw configuration keys.
type KeyValueStore interface {
	Get(key string) (any, bool)
	Set(key string, value any) error
}

// ConfigWatcher reloads configuration on change until ctx is done.
type ConfigWatcher interface {
	Watch(ctx context.Context, onReload func()) error
}

// Services holds everything the commands call into.
type Services struct {
	Records   driving.RecordService
	Search    driving.SearchService
	Index     driving.IndexAdmin
	Health    driving.HealthService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler
	Config    KeyValueStore

	// Watcher is optional; serve reloads configuration through it.
	Watcher ConfigWatcher
}

var (
	recordService   driving.RecordService
	searchService   driving.SearchService
	indexAdmin      driving.IndexAdmin
	healthService   driving.HealthService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	configStore     KeyValueStore
	configWatcher   ConfigWatcher
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Keep a record store and its search index in step",
	Long: `docsync manages business records, projects published ones into a
full-text search index and serves the record and index administration API.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the driving ports used by the commands.
func SetServices(s Services) {
	recordService = s.Records
	searchService = s.Search
	indexAdmin = s.Index
	healthService = s.Health
	settingsService = s.Settings
	scheduler = s.Scheduler
	configStore = s.Config
	configWatcher = s.Watcher
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
