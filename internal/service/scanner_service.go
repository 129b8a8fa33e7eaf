package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-scanner-service/internal/alert"
	"github.com/cypherlabdev/arb-scanner-service/internal/dedup"
	"github.com/cypherlabdev/arb-scanner-service/internal/metrics"
	"github.com/cypherlabdev/arb-scanner-service/internal/models"
	"github.com/cypherlabdev/arb-scanner-service/pkg/arbitrage"
)

const (
	defaultCommandInterval = 15 * time.Second
	defaultRecentLimit     = 100
	shutdownTimeout        = 10 * time.Second
)

// SportConfig is a feed sport key and its display label
type SportConfig struct {
	Key   string
	Label string
}

// ScannerConfig holds scan loop settings
type ScannerConfig struct {
	Sports                     []SportConfig
	PollInterval               time.Duration // Wait between scans
	CommandInterval            time.Duration // Command polling sub-interval during waits
	ReportInterval             time.Duration // Status report period, 0 disables
	AlertDelay                 time.Duration // Pause between consecutive alerts
	ErrorBackoff               time.Duration // Wait after a failed cycle
	QuotaWarningThreshold      int           // Warn when fewer feed requests remain
	IncludeProfitInFingerprint bool
	RecentLimit                int // Opportunities kept in memory for the API
}

// Dependencies holds the collaborators of the scanner.
// Commands, Log and Cache are optional.
type Dependencies struct {
	Evaluator Evaluator
	Feed      Feed
	Notifier  Notifier
	Commands  CommandSource
	Log       OpportunityLog
	Cache     Cache
	Window    *dedup.Window
	Formatter *alert.Formatter
	Metrics   *metrics.Metrics
	Clock     Clock
}

// CycleResult summarises one scan cycle
type CycleResult struct {
	Detected     int
	Emitted      int
	Suppressed   int
	Evicted      int
	FailedSports []string
}

// ScannerService orchestrates poll, evaluate, rank, dedupe and emit cycles
// and services operator commands between them. All scanning runs on the
// goroutine calling Run; the mutex only guards state read by the HTTP API.
type ScannerService struct {
	config    ScannerConfig
	evaluator Evaluator
	feed      Feed
	notifier  Notifier
	commands  CommandSource
	oppLog    OpportunityLog
	cache     Cache
	window    *dedup.Window
	formatter *alert.Formatter
	metrics   *metrics.Metrics
	clock     Clock
	logger    zerolog.Logger

	mu         sync.RWMutex
	stats      models.SessionStats
	recent     []*models.Opportunity
	lastReport time.Time
}

// NewScannerService creates a new scanner service
func NewScannerService(config ScannerConfig, deps Dependencies, logger zerolog.Logger) *ScannerService {
	if config.CommandInterval <= 0 {
		config.CommandInterval = defaultCommandInterval
	}
	if config.RecentLimit <= 0 {
		config.RecentLimit = defaultRecentLimit
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Window == nil {
		deps.Window = dedup.NewWindow(config.PollInterval)
	}
	if deps.Formatter == nil {
		deps.Formatter = alert.NewFormatter(alert.FormatterConfig{})
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(prometheus.NewRegistry())
	}

	return &ScannerService{
		config:    config,
		evaluator: deps.Evaluator,
		feed:      deps.Feed,
		notifier:  deps.Notifier,
		commands:  deps.Commands,
		oppLog:    deps.Log,
		cache:     deps.Cache,
		window:    deps.Window,
		formatter: deps.Formatter,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		logger:    logger.With().Str("component", "scanner_service").Logger(),
		stats: models.SessionStats{
			StartedAt: deps.Clock.Now(),
		},
	}
}

// Run drives the scan loop until ctx is cancelled. Failed cycles are logged
// and retried after the error backoff; Run only returns on cancellation.
func (s *ScannerService) Run(ctx context.Context) error {
	s.logger.Info().
		Int("sports", len(s.config.Sports)).
		Dur("poll_interval", s.config.PollInterval).
		Msg("scanner started")

	s.notify(ctx, s.formatter.Startup(s.startupInfo()), false)
	s.lastReport = s.clock.Now()

	for ctx.Err() == nil {
		s.serviceCommands(ctx)

		if s.IsPaused() {
			s.maybeReport(ctx)
			s.logger.Debug().Msg("scanner paused")
			if err := s.clock.Sleep(ctx, s.config.CommandInterval); err != nil {
				break
			}
			continue
		}

		if _, err := s.safeRunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.metrics.CycleFailures.Inc()
			s.logger.Error().
				Err(err).
				Dur("backoff", s.config.ErrorBackoff).
				Msg("scan cycle failed")
			if err := s.clock.Sleep(ctx, s.config.ErrorBackoff); err != nil {
				break
			}
			continue
		}

		s.maybeReport(ctx)

		if err := s.waitForNextScan(ctx); err != nil {
			break
		}
	}

	s.shutdown()
	return nil
}

// waitForNextScan waits out the poll interval in command-interval steps,
// servicing commands after each step. It returns early when paused.
func (s *ScannerService) waitForNextScan(ctx context.Context) error {
	remaining := s.config.PollInterval
	for remaining > 0 {
		step := min(s.config.CommandInterval, remaining)
		if err := s.clock.Sleep(ctx, step); err != nil {
			return err
		}
		remaining -= step

		s.serviceCommands(ctx)
		s.maybeReport(ctx)
		if s.IsPaused() {
			return nil
		}
	}
	return nil
}

// safeRunCycle runs one cycle, converting a panic into an error
func (s *ScannerService) safeRunCycle(ctx context.Context) (result *CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan cycle panicked: %v", r)
		}
	}()
	return s.RunCycle(ctx)
}

// RunCycle performs one scan: fetch every configured sport, evaluate, rank,
// filter through the deduplication window and emit the survivors in ranked
// order. A failing sport is logged and skipped. The only error returned is
// the context's.
func (s *ScannerService) RunCycle(ctx context.Context) (*CycleResult, error) {
	start := s.clock.Now()
	scan := s.updateStats(func(st *models.SessionStats) { st.Scans++ }).Scans
	s.metrics.Scans.Inc()

	s.logger.Info().Int("scan", scan).Msg("scan started")

	result := &CycleResult{}
	var detected []*models.Opportunity
	quotaWarned := false

	for _, sport := range s.config.Sports {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		opps, remaining, err := s.scanSport(ctx, sport)
		if err != nil {
			result.FailedSports = append(result.FailedSports, sport.Key)
			s.logger.Error().
				Err(err).
				Str("sport", sport.Key).
				Msg("sport skipped this cycle")
			continue
		}

		if remaining != nil {
			s.metrics.QuotaRemaining.Set(float64(*remaining))
			if *remaining < s.config.QuotaWarningThreshold && !quotaWarned {
				quotaWarned = true
				s.logger.Warn().Int("remaining", *remaining).Msg("feed quota running low")
				_ = s.notify(ctx, s.formatter.QuotaWarning(*remaining), false)
			}
		}

		detected = append(detected, opps...)
	}

	result.Detected = len(detected)

	for _, opp := range arbitrage.Rank(detected) {
		fp := dedup.Fingerprint(opp, s.config.IncludeProfitInFingerprint)
		if !s.window.ShouldEmit(fp, s.clock.Now()) {
			result.Suppressed++
			s.metrics.OpportunitiesSuppressed.Inc()
			s.logger.Debug().Str("fingerprint", fp).Msg("opportunity suppressed by cooldown")
			continue
		}

		if result.Emitted > 0 && s.config.AlertDelay > 0 {
			if err := s.clock.Sleep(ctx, s.config.AlertDelay); err != nil {
				return result, err
			}
		}

		s.emit(ctx, opp)
		result.Emitted++
	}

	result.Evicted = s.window.Evict(s.clock.Now())
	s.metrics.DedupWindowSize.Set(float64(s.window.Len()))
	s.metrics.CycleDuration.Observe(s.clock.Now().Sub(start).Seconds())

	s.logger.Info().
		Int("scan", scan).
		Int("detected", result.Detected).
		Int("emitted", result.Emitted).
		Int("suppressed", result.Suppressed).
		Strs("failed_sports", result.FailedSports).
		Msg("scan complete")

	return result, nil
}

// scanSport fetches and evaluates one sport
func (s *ScannerService) scanSport(ctx context.Context, sport SportConfig) ([]*models.Opportunity, *int, error) {
	s.updateStats(func(st *models.SessionStats) { st.FeedCalls++ })
	s.metrics.FeedCalls.WithLabelValues(sport.Key).Inc()

	feedResult, err := s.feed.FetchQuotes(ctx, sport.Key)
	if err != nil {
		s.metrics.FeedErrors.WithLabelValues(sport.Key).Inc()
		return nil, nil, fmt.Errorf("failed to fetch quotes for %s: %w", sport.Key, err)
	}
	if feedResult == nil {
		return nil, nil, nil
	}

	opps := s.evaluator.BatchEvaluate(feedResult.Events, s.clock.Now())
	for _, opp := range opps {
		if opp.Sport == "" {
			opp.Sport = sport.Key
		}
		opp.SportLabel = sport.Label
	}
	s.metrics.OpportunitiesDetected.WithLabelValues(sport.Key).Add(float64(len(opps)))

	s.logger.Debug().
		Str("sport", sport.Key).
		Int("events", len(feedResult.Events)).
		Int("opportunities", len(opps)).
		Msg("sport evaluated")

	return opps, feedResult.RequestsRemaining, nil
}

// emit alerts, logs and caches an admitted opportunity. Delivery and storage
// failures are logged and never retried.
func (s *ScannerService) emit(ctx context.Context, opp *models.Opportunity) {
	stats := s.updateStats(func(st *models.SessionStats) {
		st.OpportunitiesFound++
		if opp.ProfitPercent.GreaterThan(st.BestProfitPercent) {
			st.BestProfitPercent = opp.ProfitPercent
		}
	})
	s.metrics.OpportunitiesEmitted.WithLabelValues(opp.Sport).Inc()
	s.metrics.BestProfitPercent.Set(stats.BestProfitPercent.InexactFloat64())

	if err := s.notify(ctx, s.formatter.Opportunity(opp), false); err != nil {
		s.updateStats(func(st *models.SessionStats) { st.AlertsFailed++ })
		s.metrics.AlertsFailed.Inc()
	}

	if s.oppLog != nil {
		if err := s.oppLog.Append(ctx, opp); err != nil {
			s.logger.Warn().
				Err(err).
				Str("event_id", opp.EventID).
				Msg("failed to log opportunity")
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, opp); err != nil {
			s.logger.Warn().
				Err(err).
				Str("event_id", opp.EventID).
				Msg("failed to cache opportunity")
		}
	}

	s.remember(opp)

	s.logger.Info().
		Str("event_id", opp.EventID).
		Str("event", opp.AwayTeam+" @ "+opp.HomeTeam).
		Str("profit_percent", opp.ProfitPercent.String()).
		Strs("bookmakers", opp.Bookmakers()).
		Bool("priority", opp.HasPriorityBookmaker).
		Msg("opportunity alerted")
}

// HandleCommand applies an operator command and reports whether it was
// recognised. Unrecognised input is ignored without a reply.
func (s *ScannerService) HandleCommand(ctx context.Context, text string) bool {
	switch normalizeCommand(text) {
	case "/pause":
		if s.setPaused(true) {
			s.logger.Info().Msg("scanner paused by operator")
			_ = s.notify(ctx, s.formatter.Paused(), false)
		} else {
			_ = s.notify(ctx, s.formatter.AlreadyPaused(), false)
		}
	case "/resume":
		if s.setPaused(false) {
			s.logger.Info().Msg("scanner resumed by operator")
			_ = s.notify(ctx, s.formatter.Resumed(s.config.PollInterval), false)
		} else {
			_ = s.notify(ctx, s.formatter.AlreadyActive(), false)
		}
	case "/stats":
		s.SendReport(ctx)
	case "/help":
		_ = s.notify(ctx, s.formatter.Help(), false)
	default:
		s.logger.Debug().Str("text", text).Msg("ignoring unknown command")
		return false
	}
	return true
}

// normalizeCommand lowercases a command and strips a "@botname" suffix
func normalizeCommand(text string) string {
	cmd := strings.ToLower(strings.TrimSpace(text))
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return cmd
}

func (s *ScannerService) serviceCommands(ctx context.Context) {
	if s.commands == nil {
		return
	}

	cmds, err := s.commands.PollCommands(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("failed to poll commands")
		}
		return
	}

	for _, cmd := range cmds {
		s.HandleCommand(ctx, cmd)
	}
}

// SendReport sends the session report as a silent notification
func (s *ScannerService) SendReport(ctx context.Context) {
	_ = s.notify(ctx, s.formatter.Stats(s.Stats(), s.clock.Now()), true)
}

func (s *ScannerService) maybeReport(ctx context.Context) {
	if s.config.ReportInterval <= 0 {
		return
	}
	now := s.clock.Now()
	if now.Sub(s.lastReport) >= s.config.ReportInterval {
		s.SendReport(ctx)
		s.lastReport = now
	}
}

func (s *ScannerService) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.SendReport(ctx)
	_ = s.notify(ctx, s.formatter.Shutdown(), false)

	stats := s.Stats()
	s.logger.Info().
		Int("scans", stats.Scans).
		Int("feed_calls", stats.FeedCalls).
		Int("opportunities", stats.OpportunitiesFound).
		Msg("scanner stopped")
}

// notify sends a message, logging delivery failures
func (s *ScannerService) notify(ctx context.Context, text string, silent bool) error {
	if err := s.notifier.Send(ctx, text, silent); err != nil {
		s.logger.Warn().Err(err).Msg("failed to send notification")
		return err
	}
	return nil
}

func (s *ScannerService) startupInfo() alert.StartupInfo {
	params := s.evaluator.Params()

	labels := make([]string, len(s.config.Sports))
	for i, sport := range s.config.Sports {
		labels[i] = sport.Label
	}

	return alert.StartupInfo{
		Sports:           labels,
		Bookmakers:       params.Bookmakers,
		MinProfitPercent: params.MinProfitPercent,
		Bankroll:         params.Bankroll,
		PollInterval:     s.config.PollInterval,
		Mode:             params.Mode,
	}
}

// Stats returns a snapshot of the session counters
func (s *ScannerService) Stats() models.SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// IsPaused reports whether scanning is paused
func (s *ScannerService) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.Paused
}

// setPaused changes the pause state and reports whether it changed
func (s *ScannerService) setPaused(paused bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats.Paused == paused {
		return false
	}
	s.stats.Paused = paused
	if paused {
		s.metrics.Paused.Set(1)
	} else {
		s.metrics.Paused.Set(0)
	}
	return true
}

// updateStats applies fn under the lock and returns the resulting snapshot
func (s *ScannerService) updateStats(fn func(*models.SessionStats)) models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.stats)
	return s.stats
}

func (s *ScannerService) remember(opp *models.Opportunity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, opp)
	if over := len(s.recent) - s.config.RecentLimit; over > 0 {
		s.recent = append([]*models.Opportunity(nil), s.recent[over:]...)
	}
}

// RecentOpportunities returns the most recently alerted opportunities,
// newest first, with a cache-first strategy
func (s *ScannerService) RecentOpportunities(ctx context.Context, limit int) ([]*models.Opportunity, error) {
	if s.cache != nil {
		opps, err := s.cache.ListRecent(ctx, limit)
		if err == nil {
			return opps, nil
		}
		s.logger.Warn().Err(err).Msg("cache error, serving in-memory opportunities")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	opps := make([]*models.Opportunity, 0, len(s.recent))
	for i := len(s.recent) - 1; i >= 0; i-- {
		if limit > 0 && len(opps) == limit {
			break
		}
		opps = append(opps, s.recent[i])
	}
	return opps, nil
}

// OpportunitiesByEvent returns the alerted opportunities of one event with a
// cache-first strategy
func (s *ScannerService) OpportunitiesByEvent(ctx context.Context, eventID string) ([]*models.Opportunity, error) {
	if s.cache != nil {
		opps, err := s.cache.GetByEvent(ctx, eventID)
		if err == nil {
			return opps, nil
		}
		s.logger.Warn().
			Err(err).
			Str("event_id", eventID).
			Msg("cache error, serving in-memory opportunities")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var opps []*models.Opportunity
	for i := len(s.recent) - 1; i >= 0; i-- {
		if s.recent[i].EventID == eventID {
			opps = append(opps, s.recent[i])
		}
	}
	return opps, nil
}
