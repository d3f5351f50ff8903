// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/server"
	"github.com/pdiddy/paper-aggregator/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search_papers and get_all_recent_papers as MCP tools",
	Long: `Serve exposes the search and recent operations as MCP tools. The stdio
transport (default) talks to a single client over stdin and stdout. The
http transport serves the streamable MCP endpoint at /mcp together with
/api/search, /api/recent, /healthz and /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("transport", "", "tool transport: stdio or http (default stdio)")
	serveCmd.Flags().String("addr", "", "listen address for the http transport (default 0.0.0.0:3001)")
	_ = viper.BindPFlag("server.transport", serveCmd.Flags().Lookup("transport"))
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	h := &tools.Handler{Orchestrator: a.orchestrator, Logger: a.logger}
	mcpServer := tools.NewServer(h, version)

	switch a.cfg.Server.Transport {
	case "stdio", "":
		a.logger.Info("serving tools over stdio")
		return mcpServer.Run(cmd.Context(), &mcp.StdioTransport{})
	case "http":
		router := server.NewRouter(a.orchestrator, mcpServer, a.logger)
		a.logger.Info("serving tools over http",
			zap.String("addr", a.cfg.Server.Addr), zap.String("mcp_path", server.MCPPath))
		return server.Serve(cmd.Context(), a.cfg.Server.Addr, router, a.logger)
	}
	return fmt.Errorf("unknown transport %q (want stdio or http)", a.cfg.Server.Transport)
}
