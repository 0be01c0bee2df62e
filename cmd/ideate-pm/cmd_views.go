package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/views"
)

var (
	stateFull bool
	showRaw   bool
)

// viewFiles maps show arguments to compiled view files.
var viewFiles = map[string]string{
	"product":   views.ProductFile,
	"backlog":   views.BacklogFile,
	"questions": views.OpenQuestionsFile,
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print a compact summary of the product",
	RunE:  runState,
}

var compileViewsCmd = &cobra.Command{
	Use:   "compile-views",
	Short: "Regenerate PRODUCT.md, BACKLOG.md and OPEN_QUESTIONS.md",
	RunE:  runCompileViews,
}

var showCmd = &cobra.Command{
	Use:       "show <product|backlog|questions>",
	Short:     "Render a compiled view in the terminal",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"product", "backlog", "questions"},
	RunE:      runShow,
}

func runState(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	out, err := ws.State(ctx, stateFull)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runCompileViews(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	paths, err := ws.CompileViews(ctx)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	file, ok := viewFiles[args[0]]
	if !ok {
		return fmt.Errorf("unknown view %q: must be one of: product, backlog, questions", args[0])
	}

	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	if !ws.Initialized() {
		return product.ErrNotInitialized
	}

	data, err := os.ReadFile(ws.ViewPath(file))
	if os.IsNotExist(err) {
		if _, err = ws.CompileViews(ctx); err != nil {
			return err
		}
		data, err = os.ReadFile(ws.ViewPath(file))
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	if showRaw {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(ws.Config().Views.SummaryWidth),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("rendering %s: %w", file, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
