package main

import (
	"context"
	"time"

	"TontineSim/internal/httpapi"
	"TontineSim/internal/metrics"
	"TontineSim/internal/notifier"
	"TontineSim/internal/recorder"
	"TontineSim/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func scheduleCmd(cfgPath *string) *cobra.Command {
	var (
		cronSpec   string
		listen     string
		runOnStart bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run simulations on a cron schedule and serve their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cron") {
				cfg.Schedule.Cron = cronSpec
			}
			if cmd.Flags().Changed("listen") {
				cfg.Schedule.Listen = listen
			}
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector := metrics.New(reg)

			var rec recorder.Recorder
			if cfg.Database.SQLitePath != "" {
				sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
				if err != nil {
					log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
					rec = recorder.NewNoopRecorder()
				} else {
					rec = sr
					defer sr.Close()
				}
			} else {
				rec = recorder.NewNoopRecorder()
			}

			var tn *notifier.TelegramNotifier
			var n scheduler.Notifier
			if cfg.NotificationsEnabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Proxy)
				n = tn
			}

			sched := scheduler.NewScheduler(ctx, cfg, rec, n, collector)
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}

			srv := httpapi.NewServer(cfg.Schedule.Listen, sched, reg)
			go func() {
				if err := srv.Start(); err != nil {
					log.Error().Err(err).Msg("status server")
				}
			}()

			if runOnStart {
				log.Info().Msg("run-on-start enabled, executing a simulation now")
				go sched.RunNow()
			}

			log.Info().Str("cron", cfg.Schedule.Cron).Msg("scheduler running, press Ctrl+C to stop")
			<-ctx.Done()

			log.Info().Msg("shutdown signal received, stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&cronSpec, "cron", "", "six-field cron spec, seconds first")
	cmd.Flags().StringVar(&listen, "listen", "", "address of the status server")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run one simulation immediately")
	return cmd
}
