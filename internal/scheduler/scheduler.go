package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TontineSim/internal/config"
	"TontineSim/internal/engine"
	"TontineSim/internal/ledger"
	"TontineSim/internal/model"
	"TontineSim/internal/notifier"
	"TontineSim/internal/random"
	"TontineSim/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// Notifier delivers run outcomes. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler starts a fresh simulation on every cron tick.
type Scheduler struct {
	Cron      *cron.Cron
	Config    *config.Config
	Recorder  recorder.Recorder
	Reporters []engine.Reporter
	Notifier  Notifier // nil disables notifications
	Ctx       context.Context

	runMu   sync.Mutex // one run at a time, cron or manual
	mu      sync.Mutex
	ordinal uint64
	latest  *model.RunResult
}

// NewScheduler creates a new Scheduler. Extra reporters see every run.
func NewScheduler(ctx context.Context, cfg *config.Config, rec recorder.Recorder, n Notifier, reporters ...engine.Reporter) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&log.Logger))),
		),
		Config:    cfg,
		Recorder:  rec,
		Reporters: reporters,
		Notifier:  n,
		Ctx:       ctx,
	}
}

// Register adds the simulation task under a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register simulation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running simulation.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes one simulation immediately and returns its result.
func (s *Scheduler) RunNow() model.RunResult {
	return s.run()
}

// LatestRun returns the most recently finished run.
func (s *Scheduler) LatestRun() (model.RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return model.RunResult{}, false
	}
	return *s.latest, true
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/latest":
		r, ok := s.LatestRun()
		if !ok {
			return "No run has finished yet."
		}
		return notifier.FormatRunResult(&r)
	case "/run":
		go s.runTask()
		return "Starting a simulation run."
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) runTask() {
	s.run()
}

func (s *Scheduler) run() model.RunResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	seed := s.Config.Simulation.Seed + s.ordinal
	s.ordinal++
	s.mu.Unlock()

	cfg := s.Config
	runID := xid.New().String()
	log.Info().Str("run", runID).Uint64("seed", seed).Msg("running scheduled simulation")

	state := ledger.NewState(cfg.Tontine, cfg.Participants, cfg.Simulation.StartDate)
	if err := s.Recorder.BeginRun(&recorder.RunInfo{
		ID:        runID,
		Seed:      seed,
		Months:    cfg.Simulation.Months,
		StartDate: cfg.Simulation.StartDate,
		Members:   state.ActiveCount(),
		Source:    "schedule",
	}); err != nil {
		log.Error().Err(err).Str("run", runID).Msg("record run start")
	}

	reporters := append([]engine.Reporter{s.Recorder}, s.Reporters...)
	d := engine.New(cfg.Tontine, cfg.Participants, random.New(seed), reporters...)
	rep := d.Run(state, cfg.Simulation.Months)

	result := model.RunResult{
		RunID:         runID,
		Seed:          seed,
		Outcome:       rep.Outcome,
		MonthsRun:     rep.MonthsRun,
		FinishedAt:    time.Now().UTC(),
		Treasury:      state.TreasuryBalance,
		EmergencyFund: state.EmergencyFund,
		ActiveMembers: state.ActiveCount(),
		TotalAdmitted: state.TotalAdmitted,
	}
	s.mu.Lock()
	s.latest = &result
	s.mu.Unlock()

	s.trySend(notifier.FormatRunResult(&result))
	return result
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
