package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"totem-quiz-bot/internal/app"
	"totem-quiz-bot/internal/cache"
	"totem-quiz-bot/internal/config"
	"totem-quiz-bot/internal/infra/memory"
	pgstore "totem-quiz-bot/internal/infra/postgres"
	redisstore "totem-quiz-bot/internal/infra/redis"
	"totem-quiz-bot/internal/logger"
	"totem-quiz-bot/internal/telegram"
	transport "totem-quiz-bot/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the bot.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the bot (long polling or webhook)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath, *port)
		},
	}
}

type stores struct {
	refs     app.ReferenceStore
	ledger   app.LedgerStore
	sessions app.SessionStore
	backend  cache.Backend
	close    func()
}

func runBot(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIURL, log)
	feed := app.NewFeed()
	notifier := app.NewNotifier(client, cfg.Operator.ChatID, feed, log)
	if cfg.Operator.ChatID == 0 {
		log.Warn("operator chat not configured, operator notifications go to the log and the ops feed only")
	}

	refs := app.NewReferences(st.refs, cache.New(st.backend, config.TTLDuration(cfg.Cache.TTL, cache.DefaultTTL), log))
	ledger := app.NewLedger(st.ledger)
	bot := app.NewBot(app.BotDeps{
		Platform:      client,
		References:    refs,
		Ledger:        ledger,
		Results:       app.NewResultCalculator(ledger, refs),
		Prompts:       app.NewPrompts(client, st.sessions, notifier, log),
		Conversations: app.NewConversations(client, st.sessions, refs, notifier, log),
		Notifier:      notifier,
		Log:           log,
	})
	dispatcher := app.NewDispatcher(bot)

	registerCommands(ctx, client, log)

	routerCfg := transport.RouterConfig{
		Feed: transport.NewFeedHandler(feed, cfg.Operator.FeedToken, log),
		Log:  log,
	}
	if cfg.Telegram.Mode == config.ModeWebhook {
		routerCfg.Webhook = transport.NewWebhookHandler(cfg.Telegram.WebhookSecret, dispatcher, log)
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	pollDone := make(chan struct{})
	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		close(pollDone)
		if err := client.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			_ = server.Close()
			return err
		}
		log.Info("webhook registered", "url", cfg.Telegram.WebhookURL)
	default:
		if err := client.DeleteWebhook(ctx); err != nil {
			_ = server.Close()
			return err
		}
		poller := telegram.NewPoller(client, dispatcher, config.TTLDuration(cfg.Telegram.PollTimeout, 25*time.Second), log)
		go func() {
			defer close(pollDone)
			_ = poller.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serverErr:
		log.Error("http server failed", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)
	<-pollDone
	dispatcher.Wait()
	notifier.Wait()
	return shutdownErr
}

func openStores(ctx context.Context, cfg config.Config, log *logger.Logger) (*stores, error) {
	st := &stores{}
	var closers []func()
	st.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		st.refs = pgstore.NewReferenceStore(pool)
		st.ledger = pgstore.NewLedgerStore(pool)
		log.Info("reference data from postgres")
	} else {
		catalog, err := memory.LoadCatalog(cfg.Reference.File)
		if err != nil {
			return nil, err
		}
		refs, err := memory.NewReferenceStore(catalog)
		if err != nil {
			return nil, err
		}
		st.refs = refs
		st.ledger = memory.NewLedgerStore()
		log.Info("reference data from catalog", "file", cfg.Reference.File)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			st.close()
			_ = client.Close()
			return nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		st.backend = redisstore.NewCacheBackend(client)
		st.sessions = redisstore.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 0))
		log.Info("cache and sessions in redis", "addr", cfg.Redis.Addr)
	} else {
		st.backend = memory.NewCacheBackend()
		st.sessions = memory.NewSessionStore()
		log.Info("cache and sessions in memory")
	}
	return st, nil
}

func registerCommands(ctx context.Context, client *telegram.Client, log *logger.Logger) {
	commands := make([]telegram.BotCommand, 0, len(app.Commands))
	for _, c := range app.Commands {
		commands = append(commands, telegram.BotCommand{Command: c.Name, Description: c.Description})
	}
	if err := client.SetMyCommands(ctx, commands); err != nil {
		log.Warn("command menu not registered", "error", err)
	}
}
