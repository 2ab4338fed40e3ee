package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/watch"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driving/mcp"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server communicates over stdio using JSON-RPC and exposes document
submission, pipeline processing, graph access and exports as tools.
Background maintenance (clarification expiry, corpus reindex, corpus
directory watching) runs alongside the server.

Assistant configuration:
  {
    "mcpServers": {
      "orbit": {
        "command": "/path/to/orbit",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Document: documentService,
		Pipeline: pipelineService,
		Graph:    graphService,
		Export:   exportService,
		Examples: exampleService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(cmd.Context())

	if schedulerService != nil {
		group.Go(func() error {
			return schedulerService.Start(ctx)
		})
		defer func() {
			if err := schedulerService.Stop(); err != nil {
				logger.Warn("Stopping scheduler: %v", err)
			}
		}()
	}

	if watcher := newCorpusWatcher(); watcher != nil {
		group.Go(func() error {
			return watcher.Start(ctx)
		})
		defer watcher.Close() //nolint:errcheck // Best-effort cleanup on exit
	}

	group.Go(func() error {
		return server.Run(ctx)
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}

// newCorpusWatcher builds the corpus watcher when a directory is
// configured, nil otherwise.
func newCorpusWatcher() *watch.CorpusWatcher {
	if appSettings == nil || appSettings.Storage.CorpusDir == "" || exampleService == nil {
		return nil
	}

	watcher, err := watch.NewCorpusWatcher(watch.Config{Dir: appSettings.Storage.CorpusDir}, exampleService)
	if err != nil {
		logger.Warn("Corpus watcher unavailable: %v", err)
		return nil
	}
	return watcher
}
