package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docsync/internal/logger"
)

// mcpMountPath is where the MCP endpoint is mounted when it has no
// listener of its own.
const mcpMountPath = "/mcp"

var (
	serveAddr    string
	serveMCPAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, MCP endpoint and scheduler",
	Long: `Serves the record and index administration API over HTTP.

The MCP endpoint is mounted at /mcp on the same listener unless --mcp-addr
names its own. The reconcile scheduler runs when enabled, and edits to the
config file are picked up without a restart. SIGINT or SIGTERM stops
everything gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().StringVar(&serveMCPAddr, "mcp-addr", "", "separate MCP listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	addr, mcpAddr := serveAddr, serveMCPAddr
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if addr == "" {
			addr = settings.Server.Addr
		}
		if mcpAddr == "" {
			mcpAddr = settings.Server.MCPAddr
		}
	}

	mcpServer, err := newMCPServer()
	if err != nil {
		return err
	}

	var opts []httpapi.Option
	if mcpAddr == "" {
		opts = append(opts, httpapi.WithMount(mcpMountPath, mcpServer.Handler()))
	}
	api, err := httpapi.NewServer(&httpapi.Ports{
		Records: recordService,
		Search:  searchService,
		Index:   indexAdmin,
		Health:  healthService,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create HTTP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Run(ctx, addr)
	})

	if mcpAddr != "" {
		g.Go(func() error {
			return mcpServer.RunHTTP(ctx, mcpAddr)
		})
	}

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Start(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			return scheduler.Stop()
		})
	}

	if configWatcher != nil {
		g.Go(func() error {
			return configWatcher.Watch(ctx, applyReloadedSettings)
		})
	}

	cmd.Printf("docsync %s serving on %s\n", version, addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// applyReloadedSettings applies the settings that take effect without a
// restart. The enrichment token is read on every request and needs nothing.
func applyReloadedSettings() {
	if settingsService == nil {
		return
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reload settings: %v", err)
		return
	}
	logger.SetVerbose(settings.Verbose || verbose)
}
