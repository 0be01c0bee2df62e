// ideate-pm: repo-scoped product memory for AI-assisted ideation.
//
// Requirements, decisions and open questions live in a SQLite database under
// product/; PRODUCT.md, BACKLOG.md and OPEN_QUESTIONS.md are compiled from it.
//
// Usage:
//
//	ideate-pm init --title "Acme"
//	ideate-pm add-requirement --description "Let users pay with cards"
//	ideate-pm search --query payment
//	ideate-pm serve    # MCP server (stdio transport)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/config"
	"github.com/HendryAvila/skillkit/internal/logging"
	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/sqlitecap"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

var (
	// Global flags
	verbose    bool
	productDir string
	rootDir    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ideate-pm",
	Short: "Repo-scoped product memory: requirements, decisions and open questions",
	Long: `ideate-pm keeps a product backlog next to the code it describes.

The SQLite database under product/ is the source of truth. Every change
recompiles the Markdown views in product/views/, and "ideate-pm serve"
exposes the same operations to AI assistants over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		start, err := startDir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(filepath.Join(start, config.FileName))
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Options{Level: cfg.Logging.Level, Verbose: verbose})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&productDir, "dir", "", "Product directory relative to the project root (default: product)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Directory to start project discovery from (default: current directory)")

	initCmd.Flags().StringVar(&initTitle, "title", "", "Product name")
	initCmd.Flags().StringVar(&initVision, "vision", "", "Optional product vision")
	_ = initCmd.MarkFlagRequired("title")

	addRequirementCmd.Flags().StringVar(&reqDescription, "description", "", "Requirement idea")
	addRequirementCmd.Flags().StringVar(&reqTitle, "title", "", "Optional short title")
	addRequirementCmd.Flags().StringVar(&reqPriority, "priority", "P2", "Initial priority (P0, P1, P2)")
	_ = addRequirementCmd.MarkFlagRequired("description")

	refineCmd.Flags().StringVar(&refineID, "id", "", "Requirement ID, e.g. R-001")
	refineCmd.Flags().StringVar(&refineTitle, "title", "", "New title")
	refineCmd.Flags().StringVar(&refineDescription, "description", "", "New description")
	refineCmd.Flags().StringVar(&refinePriority, "priority", "", "New priority (P0, P1, P2)")
	refineCmd.Flags().StringVar(&refineStatus, "status", "", "New status (PROPOSED, READY, DONE)")
	refineCmd.Flags().StringArrayVar(&refineAccept, "add-accept", nil, "Acceptance criterion to append (repeatable)")
	refineCmd.Flags().StringVar(&refineAcceptType, "accept-type", "CHECKLIST", "Acceptance format (CHECKLIST, GWT)")
	_ = refineCmd.MarkFlagRequired("id")

	decideCmd.Flags().StringVar(&decideScope, "scope", "product", "Scope (product, requirement)")
	decideCmd.Flags().StringVar(&decideRef, "ref", "", "Scope reference, e.g. R-001")
	decideCmd.Flags().StringVar(&decideQuestion, "question", "", "The question being answered")
	decideCmd.Flags().StringVar(&decideChoice, "choice", "", "The chosen answer")
	decideCmd.Flags().StringVar(&decideRationale, "rationale", "", "Why this choice was made")
	decideCmd.Flags().Float64Var(&decideConfidence, "confidence", product.DefaultConfidence, "Confidence between 0 and 1")
	decideCmd.Flags().Int64Var(&decideResolves, "resolves", 0, "Open question ID this decision resolves")
	_ = decideCmd.MarkFlagRequired("question")
	_ = decideCmd.MarkFlagRequired("choice")

	askCmd.Flags().StringVar(&askScope, "scope", "product", "Scope (product, requirement)")
	askCmd.Flags().StringVar(&askRef, "ref", "", "Scope reference, e.g. R-001")
	askCmd.Flags().StringVar(&askQuestion, "question", "", "The unresolved question")
	askCmd.Flags().StringVar(&askSeverity, "severity", "medium", "Severity (low, medium, high)")
	_ = askCmd.MarkFlagRequired("question")

	stateCmd.Flags().BoolVar(&stateFull, "full", false, "Include open questions")

	searchCmd.Flags().StringVar(&searchQuery, "query", "", "Search query (FTS5 MATCH syntax)")
	searchCmd.Flags().StringVar(&searchScope, "scope", "all", "Scope to search (requirement, decision, question, all)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "Search backend (auto, fts, like); default from config")
	_ = searchCmd.MarkFlagRequired("query")

	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the Markdown source instead of rendering it")

	versionCmd.Flags().BoolVar(&checkUpdate, "check", false, "Check GitHub for a newer release")

	rootCmd.AddCommand(
		initCmd,
		addRequirementCmd,
		refineCmd,
		decideCmd,
		askCmd,
		stateCmd,
		compileViewsCmd,
		searchCmd,
		showCmd,
		serveCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, product.ErrNotInitialized) {
			fmt.Fprintln(os.Stderr, workspace.NotInitializedMessage)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// startDir is where project discovery begins.
func startDir() (string, error) {
	if rootDir != "" {
		return filepath.Abs(rootDir)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}

// openWorkspace discovers the project and negotiates the SQLite engine.
func openWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	start, err := startDir()
	if err != nil {
		return nil, err
	}
	n := sqlitecap.NewNegotiator(logger, sqlitecap.DefaultDrivers()...)
	ws, err := workspace.Discover(ctx, start, productDir, n, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("workspace resolved", zap.String("workspace", ws.Describe()))
	return ws, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
