package sqlitecap

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ─── Negotiation ─────────────────────────────────────────────────────────────

func TestProbe_ModerncHasFTS5(t *testing.T) {
	c := NewNegotiator(zap.NewNop(), Modernc).Probe(context.Background())

	assert.True(t, c.FullText())
	assert.False(t, c.FuzzyFallback())
	assert.Equal(t, "modernc", c.Source())
	assert.Equal(t, Modernc, c.Driver())
}

func TestProbe_DefaultDriversSelectModernc(t *testing.T) {
	c := NewNegotiator(nil).Probe(context.Background())

	assert.True(t, c.FullText())
	assert.Equal(t, "modernc", c.Source())
}

func TestProbe_FallsBackToAlternateDriver(t *testing.T) {
	c := NewNegotiator(zap.NewNop(), fakeNoFTS, fakeFTSModule).Probe(context.Background())

	assert.True(t, c.FullText())
	assert.Equal(t, "fake-fts-module", c.Source())
	assert.Equal(t, fakeFTSModule, c.Driver())
}

func TestProbe_CompileOptionsAreSufficient(t *testing.T) {
	c := NewNegotiator(zap.NewNop(), fakeFTSPragma).Probe(context.Background())

	assert.True(t, c.FullText(), "ENABLE_FTS5 in compile options should confirm support without creating a table")
}

func TestProbe_NoCandidateSupportsFTS5(t *testing.T) {
	c := NewNegotiator(zap.NewNop(), fakeNoFTS, fakeBroken).Probe(context.Background())

	assert.False(t, c.FullText())
	assert.True(t, c.FuzzyFallback())
	assert.Equal(t, "fake-nofts-no-fts", c.Source())
	assert.Equal(t, fakeNoFTS, c.Driver(), "fallback must use the default driver")
}

func TestProbe_AlternateNotLinked(t *testing.T) {
	c := NewNegotiator(zap.NewNop(), fakeNoFTS, fakeAbsent).Probe(context.Background())

	assert.True(t, c.FuzzyFallback())
	assert.Equal(t, fakeNoFTS, c.Driver())
}

func TestProbe_Memoized(t *testing.T) {
	n := NewNegotiator(zap.NewNop(), fakeNoFTS, fakeFTSModule)
	calls := 0
	n.probe = func(ctx context.Context, d Driver) *ProbeFailure {
		calls++
		return probeFullText(ctx, d)
	}

	first := n.Probe(context.Background())
	second := n.Probe(context.Background())

	assert.Equal(t, 2, calls, "each candidate is probed once on the first call only")
	assert.Equal(t, first, second)
}

func TestProbe_CanceledContextStillNegotiates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := NewNegotiator(zap.NewNop(), Modernc)
	var seen error
	n.probe = func(pctx context.Context, d Driver) *ProbeFailure {
		seen = pctx.Err()
		return probeFullText(pctx, d)
	}

	c := n.Probe(ctx)
	assert.NoError(t, seen)
	assert.True(t, c.FullText(), "a canceled first caller must not pin the fuzzy fallback")
	assert.Equal(t, c, n.Probe(context.Background()))
}

func TestProbe_ExactlyOneModeIsSet(t *testing.T) {
	sets := [][]Driver{
		{Modernc},
		{fakeNoFTS},
		{fakeBroken},
		{fakeNoFTS, fakeFTSPragma},
		{fakeAbsent, fakeNoFTS},
	}
	for _, drivers := range sets {
		c := NewNegotiator(zap.NewNop(), drivers...).Probe(context.Background())
		assert.NotEqual(t, c.FullText(), c.FuzzyFallback(), "capability %s", c)
	}
}

func TestProbe_LogsUnexpectedFailuresAsWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	NewNegotiator(zap.New(core), fakeNoFTS, fakeBroken).Probe(context.Background())

	lacks := logs.FilterMessage("driver lacks fts5").All()
	require.Len(t, lacks, 1)
	assert.Equal(t, zapcore.DebugLevel, lacks[0].Level)

	failed := logs.FilterMessage("driver probe failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, "fake-broken", failed[0].ContextMap()["driver"])
}

// ─── Probe failures ──────────────────────────────────────────────────────────

func TestProbeFullText_Stages(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, probeFullText(ctx, fakeFTSModule))

	f := probeFullText(ctx, fakeNoFTS)
	require.NotNil(t, f)
	assert.Equal(t, StageCreate, f.Stage)
	assert.True(t, f.Unsupported())

	f = probeFullText(ctx, fakeBroken)
	require.NotNil(t, f)
	assert.Equal(t, StageOpen, f.Stage)
	assert.False(t, f.Unsupported())

	f = probeFullText(ctx, fakeAbsent)
	require.NotNil(t, f)
	assert.Equal(t, StageOpen, f.Stage)
	assert.True(t, errors.Is(f, ErrDriverUnavailable))
	assert.True(t, f.Unsupported())
}

func TestProbeFullText_OpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}

	f := probeFullText(context.Background(), Modernc)
	require.NotNil(t, f)
	assert.Equal(t, StageOpen, f.Stage)
	assert.Contains(t, f.Error(), "modernc: open: boom")
}

// ─── Capability ──────────────────────────────────────────────────────────────

func TestNewCapability(t *testing.T) {
	c := NewCapability(fakeNoFTS, false, "test")

	assert.True(t, c.FuzzyFallback())
	assert.Equal(t, "test", c.Source())
	assert.Equal(t, "test (fts5=false)", c.String())
}

func TestCapability_OpenWithoutDriver(t *testing.T) {
	_, err := Capability{}.Open(":memory:")
	assert.Error(t, err)
}

func TestCapability_OpenUsesSelectedDriver(t *testing.T) {
	c := NewNegotiator(zap.NewNop(), Modernc).Probe(context.Background())

	db, err := c.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
