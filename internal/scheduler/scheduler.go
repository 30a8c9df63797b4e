package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"GapScout/internal/calendar"
	"GapScout/internal/model"
	"GapScout/internal/notifier"
	"GapScout/internal/recorder"
	"GapScout/internal/screener"
)

// Settings is the fixed input of every scheduled run.
type Settings struct {
	Tickers  []string
	Criteria model.ScreeningCriteria
	Mode     model.Mode
	Location *time.Location
}

// Scheduler runs the daily screen on a cron schedule in market time.
type Scheduler struct {
	Cron     *cron.Cron
	screener *screener.Screener
	recorder recorder.Recorder
	settings Settings
	logger   *zap.Logger
	ctx      context.Context
	now      func() time.Time

	running atomic.Bool
	mu      sync.Mutex
	last    *model.AnalysisResult
}

// NewScheduler creates a Scheduler. Settings.Location defaults to UTC.
func NewScheduler(ctx context.Context, sc *screener.Screener, rec recorder.Recorder, st Settings, logger *zap.Logger) *Scheduler {
	if st.Location == nil {
		st.Location = time.UTC
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(st.Location)),
		screener: sc,
		recorder: rec,
		settings: st,
		logger:   logger.With(zap.String("component", "scheduler")),
		ctx:      ctx,
		now:      time.Now,
	}
}

// Register adds the daily screen.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("tickers", len(s.settings.Tickers)))
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) dailyTask() {
	if _, err := s.RunNow(); err != nil {
		s.logger.Error("daily screen failed", zap.Error(err))
	}
}

// RunNow screens today's market date and records the result. It returns
// nil without recording on non-trading days and when a run is already in
// progress.
func (s *Scheduler) RunNow() (*model.AnalysisResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("screen already running, skipping")
		return nil, nil
	}
	defer s.running.Store(false)

	today := calendar.Day(s.now().In(s.settings.Location))
	log := s.logger.With(zap.String("date", calendar.Format(today)))
	if !s.screener.Calendar().IsTradingDay(today) {
		log.Info("market closed today, skipping")
		return nil, nil
	}

	log.Info("running daily screen")
	res, err := s.screener.AnalyzeDate(s.ctx, s.settings.Tickers, today, s.settings.Criteria, s.settings.Mode)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if err := s.recorder.RecordDate(res); err != nil {
		log.Error("record result", zap.Error(err))
	}
	return res, nil
}

// Last returns the most recent result, if any.
func (s *Scheduler) Last() *model.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		go s.dailyTask()
		return "Scan started."
	case "/last":
		if last := s.Last(); last != nil {
			return notifier.FormatDateReport(last)
		}
		return "No scan has run yet."
	case "/next":
		entries := s.Cron.Entries()
		if len(entries) == 0 || entries[0].Next.IsZero() {
			return "No scan scheduled."
		}
		return "Next scan: " + entries[0].Next.In(s.settings.Location).Format("2006-01-02 15:04 MST")
	default:
		return "Commands:\n• /scan run today's screen now\n• /last show the latest result\n• /next show the next scheduled run"
	}
}
