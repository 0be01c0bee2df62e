package sqlitecap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Capability describes the engine selected for this process. It is a value:
// once negotiated it is never mutated, and exactly one of FullText and
// FuzzyFallback is true.
type Capability struct {
	driver   Driver
	fullText bool
	source   string
}

// NewCapability builds a Capability directly, bypassing negotiation.
func NewCapability(d Driver, fullText bool, source string) Capability {
	return Capability{driver: d, fullText: fullText, source: source}
}

// Driver returns the selected driver.
func (c Capability) Driver() Driver { return c.driver }

// FullText reports whether FTS5 virtual tables can be created and queried.
func (c Capability) FullText() bool { return c.fullText }

// FuzzyFallback reports whether callers must use substring matching.
func (c Capability) FuzzyFallback() bool { return !c.fullText }

// Source is a diagnostic label naming the driver that satisfied the probe.
func (c Capability) Source() string { return c.source }

func (c Capability) String() string {
	return fmt.Sprintf("%s (fts5=%t)", c.source, c.fullText)
}

// Open opens path with the selected driver.
func (c Capability) Open(path string) (*sql.DB, error) {
	if c.driver == nil {
		return nil, errors.New("sqlitecap: capability has no driver")
	}
	return c.driver.Open(path)
}

// Negotiator probes candidate drivers once and memoizes the result.
type Negotiator struct {
	drivers []Driver
	logger  *zap.Logger
	probe   func(context.Context, Driver) *ProbeFailure

	once   sync.Once
	result Capability
}

// NewNegotiator creates a Negotiator over drivers in priority order; the first
// one is the default. With no drivers, DefaultDrivers is used.
func NewNegotiator(logger *zap.Logger, drivers ...Driver) *Negotiator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(drivers) == 0 {
		drivers = DefaultDrivers()
	}
	return &Negotiator{drivers: drivers, logger: logger, probe: probeFullText}
}

// Probe returns the negotiated Capability, probing on the first call only.
// It never fails: with no FTS5-capable candidate it falls back to the default
// driver in fuzzy mode. The result outlives the caller, so cancellation of ctx
// does not reach the probe.
func (n *Negotiator) Probe(ctx context.Context) Capability {
	n.once.Do(func() {
		n.result = n.negotiate(context.WithoutCancel(ctx))
	})
	return n.result
}

func (n *Negotiator) negotiate(ctx context.Context) Capability {
	for _, d := range n.drivers {
		failure := n.probe(ctx, d)
		if failure == nil {
			n.logger.Debug("fts5 available", zap.String("driver", d.Label()))
			return Capability{driver: d, fullText: true, source: d.Label()}
		}
		n.absorb(failure)
	}

	def := n.drivers[0]
	n.logger.Debug("no fts5-capable driver, using fuzzy fallback", zap.String("driver", def.Label()))
	return Capability{driver: def, fullText: false, source: def.Label() + "-no-fts"}
}

// absorb records a failed candidate. Missing FTS5 is expected and stays at
// debug level; an engine that cannot even be opened is surfaced as a warning
// so misconfiguration does not hide behind the fallback.
func (n *Negotiator) absorb(f *ProbeFailure) {
	fields := []zap.Field{
		zap.String("driver", f.Driver),
		zap.String("stage", string(f.Stage)),
		zap.Error(f.Err),
	}
	if f.Unsupported() {
		n.logger.Debug("driver lacks fts5", fields...)
		return
	}
	n.logger.Warn("driver probe failed", fields...)
}
