package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sachintaksande/cowin-notifier/internal/config"
	"github.com/sachintaksande/cowin-notifier/internal/cowin"
	"github.com/sachintaksande/cowin-notifier/internal/notify"
	"github.com/sachintaksande/cowin-notifier/internal/observability/metrics"
	"github.com/sachintaksande/cowin-notifier/internal/schedule"
	"github.com/sachintaksande/cowin-notifier/pkg/logging"
)

type globalFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "cowin-notifier",
		Short: "Watch CoWIN for vaccination slots and notify when they open up",
		Long: `cowin-notifier polls the public CoWIN calendar for the configured districts and
PIN codes, and sends a Telegram/e-mail report plus a spoken announcement for every
session matching your age and slot preferences.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config-file", "./config.yaml", "path of the config.yaml file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "optional .env file with COWIN_* overrides")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Poll forever (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), flags)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "once",
		Short: "Run a single pass over every target and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), flags)
		},
	})
	root.AddCommand(newDistrictsCmd())
	root.AddCommand(newConfigCmd())
	return root
}

type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	controller *schedule.Controller
}

func loadApp(flags *globalFlags) (*app, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)
	m := metrics.NewPollMetrics(prometheus.DefaultRegisterer)

	client := cowin.New(cowin.Config{
		BaseURL: cfg.Cowin.BaseURL,
		Timeout: cfg.Cowin.Timeout(),
		Logger:  logger.Logger,
	})
	targets, err := schedule.TargetsFor(cfg.Preferences, client)
	if err != nil {
		return nil, err
	}

	var messengers []notify.Messenger
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
		})
		if err != nil {
			return nil, err
		}
		messengers = append(messengers, tg)
	}
	if cfg.SMTP.Enabled() {
		mail, err := notify.NewEmail(notify.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Email:     cfg.SMTP.Email,
			Password:  cfg.SMTP.Password,
			Receivers: cfg.SMTP.Receivers,
		})
		if err != nil {
			return nil, err
		}
		messengers = append(messengers, mail)
	}
	if len(messengers) == 0 {
		logger.Warn("no messaging channel configured; reports will only be logged and announced")
	}

	var speaker notify.Speaker
	if cfg.Speech.Enabled {
		speaker = notify.NewCommandSpeaker(notify.SpeechConfig{
			Command: cfg.Speech.Command,
			Args:    cfg.Speech.Args,
		})
	}

	sink := notify.NewDispatcher(messengers, speaker, logger, m)
	controller := schedule.NewController(cfg, targets, sink, logger, m)

	logger.Info("configured targets",
		"district_ids", cfg.Preferences.DistrictIDs,
		"pin_codes", cfg.Preferences.PinCodes,
		"nearest_district", cfg.Preferences.NearestDistrict,
		"minimum_age", cfg.Preferences.MinimumAge,
		"minimum_slots", cfg.Preferences.MinimumSlots)
	return &app{cfg: cfg, logger: logger, controller: controller}, nil
}

func runLoop(parent context.Context, flags *globalFlags) error {
	a, err := loadApp(flags)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := a.cfg.Metrics.Address; addr != "" {
		go serveMetrics(ctx, addr, a.logger)
	}

	err = schedule.NewRunner(a.controller).Run(ctx)
	a.logger.Info("cowin notifier shutting down")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runOnce(parent context.Context, flags *globalFlags) error {
	a, err := loadApp(flags)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.controller.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
