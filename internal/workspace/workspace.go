// Package workspace binds a project root, its settings and the negotiated
// SQLite capability into the operations shared by the CLI and the MCP tools.
//
// Every operation opens the product store, uses it and closes it before
// returning; nothing holds a connection between calls. Operations on one
// Workspace are serialized, so a long-lived process such as the MCP server
// may call them from several goroutines.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/config"
	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/search"
	"github.com/HendryAvila/skillkit/internal/sqlitecap"
	"github.com/HendryAvila/skillkit/internal/templates"
	"github.com/HendryAvila/skillkit/internal/views"
)

// NotInitializedMessage is the remediation shown when no product exists.
const NotInitializedMessage = `Repo product is not initialized. Run: ideate-pm init --title "..."`

// Workspace is one project's product memory.
type Workspace struct {
	mu sync.Mutex

	root     string
	cfg      *config.Config
	engine   sqlitecap.Capability
	compiler *views.Compiler
	logger   *zap.Logger
}

// New creates a Workspace rooted at root.
func New(root string, cfg *config.Config, engine sqlitecap.Capability, logger *zap.Logger) (*Workspace, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Workspace{
		root:     root,
		cfg:      cfg,
		engine:   engine,
		compiler: views.NewCompiler(renderer, cfg.Views.SummaryWidth),
		logger:   logger,
	}, nil
}

// Discover loads .ideate-pm.yaml from the project root found by walking up
// from start, negotiating the engine with n.
func Discover(ctx context.Context, start, dirOverride string, n *sqlitecap.Negotiator, logger *zap.Logger) (*Workspace, error) {
	probeCfg, err := config.Load(filepath.Join(start, config.FileName))
	if err != nil {
		return nil, err
	}
	productDir := probeCfg.ProductDir
	if dirOverride != "" {
		productDir = dirOverride
	}

	root := config.FindProjectRoot(start, productDir)
	cfg := probeCfg
	if root != start {
		if cfg, err = config.Load(filepath.Join(root, config.FileName)); err != nil {
			return nil, err
		}
	}
	if dirOverride != "" {
		cfg.ProductDir = dirOverride
	}
	return New(root, cfg, n.Probe(ctx), logger)
}

// Root returns the project root.
func (w *Workspace) Root() string { return w.root }

// Config returns the loaded settings.
func (w *Workspace) Config() *config.Config { return w.cfg }

// Engine returns the negotiated capability.
func (w *Workspace) Engine() sqlitecap.Capability { return w.engine }

// Product returns the product directory layout.
func (w *Workspace) Product() product.Config {
	return product.Config{Dir: w.cfg.ProductPath(w.root)}
}

// Initialized reports whether the product database exists.
func (w *Workspace) Initialized() bool { return w.Product().Initialized() }

// ViewPath returns the path of a compiled view file.
func (w *Workspace) ViewPath(name string) string {
	return filepath.Join(w.Product().ViewsPath(), name)
}

// Init creates (or re-titles) the product and compiles the views.
func (w *Workspace) Init(ctx context.Context, title, vision string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := product.Init(ctx, w.engine, w.Product(), title, vision)
	if err != nil {
		return err
	}
	defer w.close(s)

	w.logger.Debug("product initialized",
		zap.String("dir", w.Product().Dir), zap.String("engine", w.engine.String()))
	_, err = w.compiler.Compile(ctx, s, w.Product().ViewsPath())
	return err
}

// Read runs fn against an open store.
func (w *Workspace) Read(ctx context.Context, fn func(*product.Store) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.withStore(ctx, fn)
}

// Update runs fn against an open store and recompiles the views when it succeeds.
func (w *Workspace) Update(ctx context.Context, fn func(*product.Store) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.withStore(ctx, func(s *product.Store) error {
		if err := fn(s); err != nil {
			return err
		}
		_, err := w.compiler.Compile(ctx, s, w.Product().ViewsPath())
		return err
	})
}

// CompileViews regenerates the views and returns the written paths.
func (w *Workspace) CompileViews(ctx context.Context) ([]string, error) {
	var paths []string
	err := w.Read(ctx, func(s *product.Store) error {
		var err error
		paths, err = w.compiler.Compile(ctx, s, w.Product().ViewsPath())
		return err
	})
	return paths, err
}

// withStore opens the store for fn. Callers hold w.mu.
func (w *Workspace) withStore(ctx context.Context, fn func(*product.Store) error) error {
	s, err := product.Open(ctx, w.engine, w.Product())
	if err != nil {
		return err
	}
	defer w.close(s)
	return fn(s)
}

// State renders the compact state summary.
func (w *Workspace) State(ctx context.Context, full bool) (string, error) {
	var out string
	err := w.Read(ctx, func(s *product.Store) error {
		var err error
		out, err = w.compiler.State(ctx, s, full)
		return err
	})
	return out, err
}

// Search runs a query through the dispatcher. The mode override is read from
// IDEATE_PM_SEARCH_MODE; an empty req.Mode uses the configured default.
func (w *Workspace) Search(ctx context.Context, req search.Request) (*search.Result, error) {
	if req.Mode == "" {
		mode, err := search.ParseMode(w.cfg.Search.Mode)
		if err != nil {
			w.logger.Warn("ignoring invalid search.mode in config", zap.String("mode", w.cfg.Search.Mode))
			mode = search.ModeAuto
		}
		req.Mode = mode
	}
	if req.EnvMode == "" {
		req.EnvMode = os.Getenv(search.EnvMode)
	}

	var res *search.Result
	err := w.Read(ctx, func(s *product.Store) error {
		d := search.NewDispatcher(s, w.engine,
			search.WithLogger(w.logger),
			search.WithSnippetWidth(w.cfg.Views.SnippetWidth),
		)
		var err error
		res, err = d.Search(ctx, req)
		return err
	})
	return res, err
}

func (w *Workspace) close(s *product.Store) {
	if err := s.Close(); err != nil {
		w.logger.Warn("product store close", zap.Error(err))
	}
}

// Describe is a one-line summary for diagnostics.
func (w *Workspace) Describe() string {
	return fmt.Sprintf("root=%s product=%s engine=%s", w.root, w.Product().Dir, w.engine)
}
