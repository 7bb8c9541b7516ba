package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server communicates over stdio using JSON-RPC and exposes search and
index maintenance as tools. 'docsync serve' exposes the same tools over HTTP.

Client configuration:
  {
    "mcpServers": {
      "docsync": {
        "command": "/path/to/docsync",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	mcp.Version = version
	server, err := mcp.NewServer(&mcp.Ports{
		Search:  searchService,
		Index:   indexAdmin,
		Records: recordService,
		Health:  healthService,
	})
	if err != nil {
		return nil, fmt.Errorf("create MCP server: %w", err)
	}
	return server, nil
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := newMCPServer()
	if err != nil {
		return err
	}
	return server.Run(commandContext(cmd))
}
