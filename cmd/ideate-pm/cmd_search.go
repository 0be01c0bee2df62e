package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/search"
)

var (
	searchQuery string
	searchScope string
	searchMode  string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search requirements, decisions and open questions",
	Long: `Searches with SQLite FTS5 when the engine supports it and falls back
to substring (LIKE) matching otherwise.

IDEATE_PM_SEARCH_MODE=auto|fts|like overrides --mode.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	scope, err := search.ParseScope(searchScope)
	if err != nil {
		return err
	}
	var mode search.Mode
	if searchMode != "" {
		if mode, err = search.ParseMode(searchMode); err != nil {
			return err
		}
	}

	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	res, err := ws.Search(ctx, search.Request{Query: searchQuery, Scope: scope, Mode: mode})
	if err != nil {
		return err
	}
	logger.Debug("search complete",
		zap.String("mode", string(res.Mode)), zap.Bool("fts", res.FullText), zap.Int("hits", res.Total()))

	out := cmd.OutOrStdout()
	for _, n := range res.Notices {
		fmt.Fprintln(out, n.String())
	}
	if len(res.Notices) > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, res.Markdown())
	return nil
}
