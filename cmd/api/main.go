package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"thematica/internal/analysis"
	"thematica/internal/config"
	"thematica/internal/jobs"
	"thematica/internal/llm"
	llmclient "thematica/internal/llm/client"
	"thematica/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx := context.Background()

	flashClient, err := llmclient.New(ctx, cfg.LLMProvider, cfg.FlashModel)
	if err != nil {
		log.Fatal().Err(err).Msg("flash client init failed")
	}
	proClient, err := llmclient.New(ctx, cfg.LLMProvider, cfg.ProModel)
	if err != nil {
		log.Fatal().Err(err).Msg("pro client init failed")
	}

	mws := []llm.Middleware{
		llm.WithLogging(log.With().Str("component", "llm").Logger()),
		llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst),
	}
	policy := llm.RepairPolicy{MaxAttempts: cfg.RepairAttempts, AppendParseError: true}
	gwLog := log.With().Str("component", "gateway").Logger()
	flash := llm.NewGateway(llm.Wrap(flashClient, mws...), policy, gwLog)
	pro := llm.NewGateway(llm.Wrap(proClient, mws...), policy, gwLog)

	pipeline := analysis.NewPipeline(flash, pro, cfg.BatchSize, log.With().Str("component", "pipeline").Logger())

	store := jobs.NewStore(cfg.JobCap, cfg.JobTTL())
	queue := jobs.NewQueue(store, func(ctx context.Context, req analysis.Request) (analysis.Result, error) {
		return pipeline.Run(ctx, req)
	}, cfg.Concurrency, cfg.QueueDepth, log.With().Str("component", "queue").Logger())

	api := server.New(queue, store, log.With().Str("component", "api").Logger())

	h2s := &http2.Server{}
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h2c.NewHandler(api.Router(), h2s),
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	queue.Close()
	_ = flashClient.Close()
	_ = proClient.Close()
}
