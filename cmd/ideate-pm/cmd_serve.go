package main

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pmserver "github.com/HendryAvila/skillkit/internal/server"
	"github.com/HendryAvila/skillkit/internal/updater"
)

var checkUpdate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Serves the ideate-pm tools, prompt and resources over MCP on stdin/stdout.
Logs go to stderr so they never interleave with the protocol stream.`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Long:  `Prints the version. With --check, asks GitHub whether a newer release exists.`,
	RunE:  runVersion,
}

// releaseEndpoint is replaced in tests.
var releaseEndpoint = updater.DefaultEndpoint

func runServe(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		return err
	}

	s := pmserver.New(ws, logger)
	logger.Info("serving MCP over stdio", zap.String("root", ws.Root()), zap.Bool("initialized", ws.Initialized()))
	return mcpserver.ServeStdio(s)
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ideate-pm v%s\n", pmserver.Version)
	if !checkUpdate {
		return nil
	}

	c := updater.NewChecker("ideate-pm/" + pmserver.Version)
	c.Endpoint = releaseEndpoint
	res, err := c.Check(commandContext(cmd), pmserver.Version)
	if err != nil {
		logger.Debug("release check failed", zap.Error(err))
		fmt.Fprintln(out, "Could not check for updates.")
		return nil
	}
	fmt.Fprintln(out, res.String())
	return nil
}
