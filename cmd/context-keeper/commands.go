package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/contextdocs"
	"github.com/HendryAvila/skillkit/internal/syncheck"
	"github.com/HendryAvila/skillkit/internal/templates"
)

var (
	scanDryRun  bool
	checkStrict bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <project-path>",
	Short: "Detect the tech stack and generate context documents",
	Long: `Scans the project and writes:
  - USERAGENTS.md with the directory structure and coding conventions
  - TECH_INFO.md in every directory (three levels deep)
  - the context-keeper block in AGENTS.md or CLAUDE.md`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var checkCmd = &cobra.Command{
	Use:   "check <project-path>",
	Short: "Check that TECH_INFO.md and USERAGENTS.md changed with the code",
	Long: `Reads git status and reports directories whose code changed without
their TECH_INFO.md changing. Exits 0 unless --strict is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := projectPath(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning project: %s\n\n", root)

	renderer, err := templates.NewRenderer()
	if err != nil {
		return err
	}
	gen := contextdocs.NewGenerator(renderer, logger, contextdocs.Options{DryRun: scanDryRun})
	rep, err := gen.Generate(root)
	if err != nil {
		return err
	}

	stacks := "None detected"
	if len(rep.Stacks) > 0 {
		stacks = strings.Join(rep.Stacks, ", ")
	}
	fmt.Fprintf(out, "Tech stack: %s\n", stacks)
	fmt.Fprintf(out, "Coding conventions: %d rules generated\n\n", len(rep.Conventions))

	for _, a := range rep.Actions {
		fmt.Fprintln(out, actionLine(a, rep.DryRun))
	}
	logger.Debug("scan complete", zap.Int("actions", len(rep.Actions)), zap.Bool("dry_run", rep.DryRun))

	if rep.DryRun {
		return nil
	}
	fmt.Fprint(out, "\nDone! Project context documentation generated.\n\n"+
		"Next steps:\n"+
		"1. Review and customize USERAGENTS.md\n"+
		"2. Fill in the [fill in] sections of the TECH_INFO.md files\n"+
		"3. Agents will now keep these documents up to date\n")
	return nil
}

func actionLine(a contextdocs.Action, dryRun bool) string {
	var verb string
	switch a.Kind {
	case contextdocs.Created:
		verb = "create"
	case contextdocs.Updated:
		verb = "update"
	default:
		return fmt.Sprintf("Skipped %s: %s", a.Path, a.Note)
	}
	line := a.Path
	if a.Note != "" {
		line += " (" + a.Note + ")"
	}
	if dryRun {
		return fmt.Sprintf("[DRY-RUN] Would %s: %s", verb, line)
	}
	return fmt.Sprintf("%sd: %s", strings.ToUpper(verb[:1])+verb[1:], line)
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := projectPath(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rep, err := syncheck.NewChecker(nil, logger).Check(ctx, root)
	if err != nil {
		return err
	}
	for _, line := range rep.Lines() {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	if code := rep.ExitCode(checkStrict); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// projectPath resolves p and requires it to be an existing directory.
func projectPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project path does not exist: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path is not a directory: %s", abs)
	}
	return abs, nil
}
