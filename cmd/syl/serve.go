package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/syl/internal/httpapi"
	"github.com/DeusData/syl/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the HTTP API used by the annotation UI.

The listen address comes from .syl/config.yaml (default :3000); the PORT
environment variable overrides the port.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol server on stdin/stdout.

Agents can list files, read semantic trees and manage annotations through
its tools. This command is usually launched by an MCP client.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)
}

// listenAddr applies the PORT override to the configured address.
func listenAddr(configured string) string {
	port := os.Getenv("PORT")
	if port == "" {
		return configured
	}
	host := configured
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host + ":" + port
}

func runServe(cmd *cobra.Command, _ []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := sess.project
	addr := listenAddr(p.Config().EffectiveListen())
	srv := httpapi.New(p, newGenerator(p))
	slog.Info("serve.start", "addr", addr, "root", p.Root(), "version", version)
	fmt.Fprintf(os.Stderr, "syl listening on %s (project %s)\n", addr, p.Root())
	return srv.Run(ctx, addr)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := tools.NewServer(sess.project, version)
	slog.Info("mcp.start", "root", sess.project.Root(), "version", version)
	if err := srv.MCPServer().Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
