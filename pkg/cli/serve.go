package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"intakeform/pkg/api"
	"intakeform/pkg/bot"
	"intakeform/pkg/bot/telegramadapter"
	"intakeform/pkg/config"
	"intakeform/pkg/logging"
	"intakeform/pkg/metrics"
	"intakeform/pkg/notify"
	"intakeform/pkg/schedule"
	"intakeform/pkg/state"
	"intakeform/pkg/storage"
	"intakeform/pkg/submit"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, root.settingsFile, debug)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}

func serve(ctx context.Context, settingsFile string, debug bool) error {
	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return err
	}
	closer := logging.Setup(settings.LogFile)
	defer closer.Close()

	log.Println("Starting intake form service...")
	for _, w := range settings.Warnings() {
		log.Printf("Warning: %s", w)
	}

	forms, err := config.LoadFormConfig(settings.FormConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load form configuration: %w", err)
	}

	kv, closeKV, err := openStorage(settings)
	if err != nil {
		return err
	}
	defer closeKV()

	observer, err := metrics.NewObserver("intakeform", promclient.DefaultRegisterer)
	if err != nil {
		return err
	}

	store, err := state.NewStore(submit.NewFSMCreator(), kv, state.StoreOptions{
		StartMode:   settings.StartMode,
		MaxSessions: settings.MaxSessions,
		QuietPeriod: settings.QuietPeriod,
		Observer:    observer,
		Template:    forms.StartTemplate(),
	})
	if err != nil {
		return err
	}

	orchestrator, err := buildOrchestrator(settings, forms, observer)
	if err != nil {
		return err
	}

	server := api.NewServer(store, forms, orchestrator, api.ServerConfig{
		AllowedOrigins: settings.AllowedOrigins,
		Debug:          debug,
	})
	httpServer := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on %s", settings.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		store.FlushAll()
		log.Println("Pending drafts flushed.")
		return err
	})
	return g.Wait()
}

func openStorage(settings config.Settings) (storage.KV, func(), error) {
	if settings.DatabaseDSN == "" {
		return storage.NewMemory(), func() {}, nil
	}
	db, err := storage.OpenPostgres(settings.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Printf("Warning: closing database: %v", err)
		}
	}, nil
}

func buildOrchestrator(settings config.Settings, forms *config.FormConfig, observer *metrics.Observer) (*submit.Orchestrator, error) {
	submitter, err := submit.New(settings.SubmitProvider, submit.Credentials{
		Web3FormsAccessKey: settings.Web3FormsAccessKey,
		EmailJSServiceID:   settings.EmailJSServiceID,
		EmailJSTemplateID:  settings.EmailJSTemplateID,
		EmailJSPublicKey:   settings.EmailJSPublicKey,
	}, &http.Client{Timeout: settings.SubmitTimeout})
	if err != nil {
		return nil, err
	}

	opts := []submit.Option{submit.WithObserver(observer)}
	if widget := schedule.NewCalendly(settings.CalendlyURL); widget != nil {
		opts = append(opts, submit.WithScheduler(widget))
	}
	if settings.TelegramBotToken != "" && settings.TargetUserID != 0 {
		client, err := bot.NewClient(settings.TelegramBotToken)
		if err != nil {
			log.Printf("Warning: lead notifications disabled: %v", err)
		} else {
			adapter, err := telegramadapter.New(client, log.Default())
			if err != nil {
				return nil, err
			}
			opts = append(opts, submit.WithNotifier(notify.NewLeadNotifier(adapter, settings.TargetUserID, forms, nil)))
		}
	}
	return submit.NewOrchestrator(submitter, opts...), nil
}
