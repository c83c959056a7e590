package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/healthylinkx/chatbot/internal/agent"
	"github.com/healthylinkx/chatbot/internal/cache"
	"github.com/healthylinkx/chatbot/internal/config"
	"github.com/healthylinkx/chatbot/internal/directory"
	"github.com/healthylinkx/chatbot/internal/health"
	"github.com/healthylinkx/chatbot/internal/httpapi"
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/internal/service"
	"github.com/healthylinkx/chatbot/internal/tools"
	"github.com/healthylinkx/chatbot/pkg/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal("Server stopped: %v", err)
	}
}

func run(ctx context.Context) error {
	// Initialize configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}
	log.GetLogger().SetLevel(log.ParseLevel(cfg.Log.Level))
	if log.GetLogger().Level() > log.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := directory.Open(ctx, cfg.Directory.Driver, cfg.Directory.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if cfg.Directory.Migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	var doctors directory.Store = store
	if cfg.Cache.Enabled() {
		rdb, err := cache.NewRedis(ctx, cache.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable at %s, continuing without cache: %v", cfg.Cache.Addr, err)
		} else {
			defer rdb.Close()
			doctors = directory.NewCachedStore(store, rdb, cfg.Cache.TTL)
		}
	}

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSearchDoctors(doctors, cfg.Agent.ResultLimit)); err != nil {
		return err
	}

	adapter, err := llm.NewAdapter(cfg.Model.ModelID,
		llm.WithSystemPrompt(tools.SystemPrompt),
		llm.WithTools(registry.Specs()...),
		llm.WithAnthropicVersion(cfg.Model.AnthropicVersion),
	)
	if err != nil {
		return err
	}

	endpoint, err := llm.NewBedrockEndpoint(ctx, cfg.Model.Region, cfg.Model.RequestTimeout())
	if err != nil {
		return err
	}
	invoker := llm.NewInvoker(endpoint,
		llm.WithMaxAttempts(cfg.Agent.MaxAttempts),
		llm.WithBaseDelay(cfg.Agent.BaseDelay()),
	)

	orchestrator := agent.NewOrchestrator(adapter, invoker, registry, cfg.Agent.MaxToolRounds)
	chat := service.NewChatService(orchestrator, cfg.Model.DefaultParams())

	monitor, err := health.NewMonitor(store, cfg.Health.CronExpr)
	if err != nil {
		return err
	}
	if err := monitor.Start(ctx); err != nil {
		return err
	}
	defer monitor.Stop()

	srv := httpapi.NewServer(chat,
		httpapi.WithHealth(monitor),
		httpapi.WithRequestTimeout(cfg.HTTP.ChatTimeout),
	)

	log.Info("Listening on %s with model %s (%s)", cfg.HTTP.Addr, adapter.ModelID(), adapter.Family())
	return serve(ctx, srv, cfg.HTTP.Addr)
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is done or the listener fails, then shuts it down.
func serve(ctx context.Context, srv httpServer, addr string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
