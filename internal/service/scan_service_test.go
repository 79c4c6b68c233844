package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alanyoungcy/boredraw/internal/arbitrage"
	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/normalize"
	"github.com/alanyoungcy/boredraw/internal/notify"
	"github.com/alanyoungcy/boredraw/internal/reconcile"
)

// --- in-memory fakes ---

type fakeGameStore struct {
	mu   sync.Mutex
	data map[domain.Source]domain.SourceData
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{data: make(map[domain.Source]domain.SourceData)}
}

func (f *fakeGameStore) Upsert(_ context.Context, source domain.Source, game domain.RawGame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[source] == nil {
		f.data[source] = make(domain.SourceData)
	}
	f.data[source][game.League] = append(f.data[source][game.League], game)
	return nil
}

func (f *fakeGameStore) UpsertBatch(ctx context.Context, source domain.Source, games []domain.RawGame) error {
	for _, g := range games {
		if err := f.Upsert(ctx, source, g); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGameStore) LoadSource(_ context.Context, source domain.Source) (domain.SourceData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(domain.SourceData, len(f.data[source]))
	for league, games := range f.data[source] {
		out[league] = append([]domain.RawGame(nil), games...)
	}
	return out, nil
}

func (f *fakeGameStore) PurgeBefore(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeGameStore) Count(_ context.Context, source domain.Source) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, games := range f.data[source] {
		n += int64(len(games))
	}
	return n, nil
}

func (f *fakeGameStore) LastScrape(context.Context, domain.Source) (time.Time, error) {
	return time.Time{}, nil
}

type fakeAlertStore struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (f *fakeAlertStore) Insert(_ context.Context, alert domain.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertStore) ListRecent(_ context.Context, limit int) ([]domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.alerts) {
		limit = len(f.alerts)
	}
	return append([]domain.Alert(nil), f.alerts[len(f.alerts)-limit:]...), nil
}

type fakeSettingsStore struct {
	stored *domain.Settings
}

func (f *fakeSettingsStore) Get(context.Context) (domain.Settings, error) {
	if f.stored == nil {
		return domain.Settings{}, domain.ErrNotFound
	}
	return *f.stored, nil
}

func (f *fakeSettingsStore) Put(_ context.Context, s domain.Settings) error {
	f.stored = &s
	return nil
}

type fakeAlertCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeAlertCache() *fakeAlertCache {
	return &fakeAlertCache{seen: make(map[string]bool)}
}

func (f *fakeAlertCache) MarkSent(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fakeResultCache struct {
	mu        sync.Mutex
	merged    domain.MergedData
	unmatched map[domain.Source]domain.UnmatchedReport
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{unmatched: make(map[domain.Source]domain.UnmatchedReport)}
}

func (f *fakeResultCache) SetMerged(_ context.Context, data domain.MergedData, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merged = data
	return nil
}

func (f *fakeResultCache) GetMerged(context.Context) (domain.MergedData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.merged == nil {
		return nil, domain.ErrNotFound
	}
	return f.merged, nil
}

func (f *fakeResultCache) SetUnmatched(_ context.Context, source domain.Source, report domain.UnmatchedReport, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmatched[source] = report
	return nil
}

func (f *fakeResultCache) GetUnmatched(_ context.Context, source domain.Source) (domain.UnmatchedReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.unmatched[source]
	if !ok {
		return domain.UnmatchedReport{}, domain.ErrNotFound
	}
	return report, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (r *recordingBroadcaster) BroadcastAlert(alert domain.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

// --- fixtures ---

type scanFixture struct {
	svc         *ScanService
	games       *fakeGameStore
	alerts      *fakeAlertStore
	settings    *fakeSettingsStore
	broadcaster *recordingBroadcaster
}

func newScanFixture(t *testing.T, cfg ScanConfig) *scanFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &scanFixture{
		games:       newFakeGameStore(),
		alerts:      &fakeAlertStore{},
		settings:    &fakeSettingsStore{},
		broadcaster: &recordingBroadcaster{},
	}
	f.svc = NewScanService(
		f.games,
		f.alerts,
		f.settings,
		newFakeAlertCache(),
		newFakeResultCache(),
		reconcile.New(normalize.DefaultMap(), reconcile.DefaultPolicy(), logger),
		notify.NewNotifier(nil, logger),
		f.broadcaster,
		cfg,
		logger,
	)
	return f
}

func defaultScanConfig() ScanConfig {
	return ScanConfig{
		DedupWindow: time.Hour,
		ResultTTL:   10 * time.Minute,
		Defaults:    arbitrage.Params{Stake: 50, CommissionDiscount: 0, Retention: 80},
	}
}

// seedArbableGame stores a fixture whose 2-1 score is profitable at the
// default parameters.
func (f *scanFixture) seedArbableGame(t *testing.T, league string) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := f.games.Upsert(ctx, domain.SourceBookie, domain.RawGame{
		League:     league,
		TeamA:      "Arsenal",
		TeamB:      "Chelsea",
		URL:        "https://bookie.example/arsenal-chelsea",
		ScrapeTime: now,
		Scores:     []domain.ScoreOdds{{Score: "2-1", Odds: 5.0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = f.games.Upsert(ctx, domain.SourceExchange, domain.RawGame{
		League:     league,
		TeamA:      "Arsenal",
		TeamB:      "Chelsea",
		URL:        "https://exchange.example/arsenal-chelsea",
		ScrapeTime: now,
		Scores: []domain.ScoreOdds{
			{Score: "0-0", Odds: 9.0, Liquidity: 900},
			{Score: "2-1", Odds: 1.8, Liquidity: 400},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

// --- tests ---

func TestScan_DetectsAndRecordsOpportunity(t *testing.T) {
	f := newScanFixture(t, defaultScanConfig())
	f.seedArbableGame(t, "English Premier League")

	result, err := f.svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if result.Leagues != 1 || result.Games != 1 || result.Scores != 1 {
		t.Errorf("result counts = %+v, want 1 league / 1 game / 1 score", result)
	}
	if result.Arbable != 1 || result.Notified != 1 || result.Suppressed != 0 {
		t.Errorf("result = %+v, want 1 arbable notified once", result)
	}

	if len(f.alerts.alerts) != 1 {
		t.Fatalf("stored alerts = %d, want 1", len(f.alerts.alerts))
	}
	alert := f.alerts.alerts[0]
	if alert.League != "English Premier League" || alert.Score != "2-1" {
		t.Errorf("alert = %+v, want EPL 2-1", alert)
	}
	if alert.Profit <= 0 {
		t.Errorf("Profit = %g, want the positive worst case", alert.Profit)
	}
	if alert.BackStake != 50 {
		t.Errorf("BackStake = %g, want the default 50", alert.BackStake)
	}
	if alert.ID == "" {
		t.Error("alert should carry a generated ID")
	}

	if len(f.broadcaster.alerts) != 1 {
		t.Errorf("broadcast alerts = %d, want 1", len(f.broadcaster.alerts))
	}
}

func TestScan_DedupSuppressesRepeat(t *testing.T) {
	f := newScanFixture(t, defaultScanConfig())
	f.seedArbableGame(t, "English Premier League")

	ctx := context.Background()
	if _, err := f.svc.Scan(ctx); err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Scan(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if second.Arbable != 1 {
		t.Errorf("second pass Arbable = %d, want 1 (opportunity still live)", second.Arbable)
	}
	if second.Notified != 0 || second.Suppressed != 1 {
		t.Errorf("second pass = %+v, want 0 notified / 1 suppressed inside the dedup window", second)
	}
	if len(f.alerts.alerts) != 1 {
		t.Errorf("stored alerts = %d, want 1 (no duplicate row)", len(f.alerts.alerts))
	}
}

func TestScan_TestLeagueNeverNotifies(t *testing.T) {
	cfg := defaultScanConfig()
	cfg.TestLeague = "English Premier League"
	f := newScanFixture(t, cfg)
	f.seedArbableGame(t, "English Premier League")

	result, err := f.svc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Arbable != 1 {
		t.Errorf("Arbable = %d, want 1 (test league is still evaluated)", result.Arbable)
	}
	if result.Notified != 0 || result.Suppressed != 1 {
		t.Errorf("result = %+v, want the test-league alert suppressed", result)
	}
	if len(f.alerts.alerts) != 0 {
		t.Errorf("stored alerts = %d, want 0 for the test league", len(f.alerts.alerts))
	}
	if len(f.broadcaster.alerts) != 0 {
		t.Errorf("broadcast alerts = %d, want 0 for the test league", len(f.broadcaster.alerts))
	}
}

func TestScan_StoredSettingsOverrideDefaults(t *testing.T) {
	f := newScanFixture(t, defaultScanConfig())
	f.seedArbableGame(t, "English Premier League")
	f.settings.stored = &domain.Settings{
		BackStake:          200,
		CommissionDiscount: 20,
		Retention:          90,
	}

	if _, err := f.svc.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(f.alerts.alerts) != 1 {
		t.Fatalf("stored alerts = %d, want 1", len(f.alerts.alerts))
	}
	if got := f.alerts.alerts[0].BackStake; got != 200 {
		t.Errorf("BackStake = %g, want the stored 200", got)
	}
}

func TestMerged_ServesCacheThenRecomputes(t *testing.T) {
	f := newScanFixture(t, defaultScanConfig())
	f.seedArbableGame(t, "English Premier League")

	ctx := context.Background()

	// Cold cache: recomputed from the stores without notifying.
	merged, err := f.svc.Merged(ctx)
	if err != nil {
		t.Fatalf("Merged() error = %v", err)
	}
	if len(merged["English Premier League"]) != 1 {
		t.Fatalf("merged = %v, want the seeded game", merged)
	}
	if !merged["English Premier League"][0].Scores[0].Arbable {
		t.Error("recomputed view should carry evaluated scores")
	}
	if len(f.alerts.alerts) != 0 {
		t.Error("on-demand recompute must not store alerts")
	}

	// A scan pass warms the cache; the next read hits it.
	if _, err := f.svc.Scan(ctx); err != nil {
		t.Fatal(err)
	}
	cached, err := f.svc.Merged(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached["English Premier League"]) != 1 {
		t.Errorf("cached merged = %v, want the seeded game", cached)
	}
}

func TestUnmatched_RejectsUnknownSource(t *testing.T) {
	f := newScanFixture(t, defaultScanConfig())

	_, err := f.svc.Unmatched(context.Background(), domain.Source("sportsbook"))
	if err != domain.ErrUnknownSource {
		t.Errorf("Unmatched(sportsbook) error = %v, want ErrUnknownSource", err)
	}
}
