package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/babylog/internal/bot"
	"github.com/ccollicutt/babylog/internal/logging"
	"github.com/ccollicutt/babylog/pkg/config"
	"github.com/ccollicutt/babylog/pkg/parser"
	"github.com/ccollicutt/babylog/pkg/pending"
	"github.com/ccollicutt/babylog/pkg/telegram"
	"github.com/ccollicutt/babylog/pkg/tracker"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve <config-file>",
		Short: "Run the Telegram webhook server",
		Long: `Run the HTTP server that receives Telegram webhook updates.

Each message is parsed and answered with a confirmation preview. Events are
uploaded to the tracker when the caregiver presses Confirm. Previews that are
not answered expire after pending.ttl.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.ExactArgs(1),
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.ValidateServe(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ts, err := tracker.Login(ctx, tracker.Credentials{
		TokenURL:     cfg.Tracker.TokenURL,
		ClientID:     cfg.Tracker.ClientID,
		ClientSecret: cfg.Tracker.ClientSecret,
		Email:        cfg.Tracker.Email,
		Password:     cfg.Tracker.Password,
	})
	if err != nil {
		return err
	}

	uploader := tracker.New(cfg.Tracker.BaseURL, cfg.Tracker.ChildID, ts,
		tracker.WithTimeout(cfg.Tracker.Timeout),
		tracker.WithMaxRetries(cfg.Tracker.MaxRetries),
		tracker.WithLogger(logger.Named("tracker")),
	)
	chat := telegram.NewClient(cfg.Telegram.Token,
		telegram.WithAPIURL(cfg.Telegram.APIURL),
		telegram.WithTimeout(cfg.Telegram.Timeout),
	)
	store := pending.New[bot.Key, bot.Pending](cfg.Pending.TTL)

	handler := bot.New(parser.New(cfg.Vocabulary()), chat, uploader, store,
		bot.WithLocation(cfg.Location()),
		bot.WithAllowedChats(cfg.Telegram.AllowedChats...),
		bot.WithLogger(logger.Named("bot")),
	)

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Listen, err)
	}

	return serve(ctx, ln, serverOptions{
		webhookPath:     cfg.Server.WebhookPath,
		handler:         handler,
		store:           store,
		sweepInterval:   cfg.Pending.SweepInterval,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		logger:          logger,
	})
}

type serverOptions struct {
	webhookPath     string
	handler         http.Handler
	store           *bot.Store
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// serve runs the webhook server and the pending sweeper until ctx is done,
// then shuts the server down within the shutdown timeout.
func serve(ctx context.Context, ln net.Listener, opts serverOptions) error {
	mux := http.NewServeMux()
	mux.Handle(opts.webhookPath, opts.handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opts.logger.Info("listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("webhook_path", opts.webhookPath))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := opts.store.Run(gctx, opts.sweepInterval, func(removed int) {
			if removed > 0 {
				opts.logger.Debug("expired pending previews", zap.Int("removed", removed))
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		opts.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
