// context-keeper: keeps per-directory tech notes in step with the code.
//
// Usage:
//
//	context-keeper scan <project-path> [--dry-run]
//	context-keeper check <project-path> [--strict]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/logging"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger
)

// exitError carries a non-zero exit status that is not a failure message.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

var rootCmd = &cobra.Command{
	Use:   "context-keeper",
	Short: "Generate and verify project context documentation",
	Long: `context-keeper writes USERAGENTS.md and a TECH_INFO.md per directory so
coding agents can find their way around a project, and checks that those
documents change together with the code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.Options{Verbose: verbose})
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

	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Show what would be done without making changes")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit with status 2 when docs are out of sync")

	rootCmd.AddCommand(scanCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
