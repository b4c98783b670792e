package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/chatwarden/warden/moderation"
	"github.com/chatwarden/warden/moderation/classifier"
	"github.com/chatwarden/warden/moderation/termstore"
	"github.com/chatwarden/warden/moderation/userstore"
)

type Server struct {
	logger   *slog.Logger
	pipeline *moderation.Pipeline
	echo     *echo.Echo
}

type Config struct {
	DatabaseURL      string
	RedisURL         string
	ClassifierKind   string
	TermsFileJSON    string
	JudgeHost        string
	JudgeTimeout     time.Duration
	JudgeRateLimit   int
	OpenAIAPIKey     string
	OpenAIModel      string
	VerdictCacheSize int
	BaselineRating   int
	MuteDuration     time.Duration
	MinMessageLen    int
	RestoreBonus     int
	LexicalPenalty   int
	Logger           *slog.Logger
}

func NewServer(ctx context.Context, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	db, err := userstore.SetupDatabase(config.DatabaseURL, 40)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	var users userstore.UserStore
	if config.RedisURL != "" {
		rus, err := userstore.NewRedisUserStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis userstore: %w", err)
		}
		users = rus
		logger.Info("user records backed by redis")
	} else {
		gus, err := userstore.NewGormUserStore(db)
		if err != nil {
			return nil, fmt.Errorf("initializing userstore: %w", err)
		}
		users = gus
	}

	cls, err := buildClassifier(ctx, config, db, logger)
	if err != nil {
		return nil, err
	}
	if config.VerdictCacheSize > 0 {
		cls = classifier.NewCached(cls, config.VerdictCacheSize, 10*time.Minute)
	}

	// flag defaults live on the CLI flags; values are taken as-is so that
	// an explicit --baseline-rating 0 means a zero starting allowance
	policy := moderation.DefaultPolicy()
	policy.BaselineRating = config.BaselineRating
	policy.MuteDuration = config.MuteDuration
	policy.MinMessageLen = config.MinMessageLen
	policy.RestoreBonus = config.RestoreBonus

	gateway := moderation.NewLogGateway(logger)
	ledger := moderation.NewLedger(users, policy.BaselineRating)
	sanctions := moderation.NewSanctionManager(logger, gateway, ledger, policy.MuteDuration, policy.RestoreBonus)

	pipeline := &moderation.Pipeline{
		Logger:     logger,
		Classifier: cls,
		Ledger:     ledger,
		Sanctions:  sanctions,
		Gateway:    gateway,
		Policy:     policy,
	}

	s := &Server{
		logger:   logger,
		pipeline: pipeline,
	}
	s.echo = s.buildAPI()
	return s, nil
}

func buildClassifier(ctx context.Context, config Config, db *gorm.DB, logger *slog.Logger) (classifier.Classifier, error) {
	switch config.ClassifierKind {
	case "", "lexical":
		var terms termstore.TermStore
		if config.TermsFileJSON != "" {
			ts, err := termstore.LoadFromFileJSON(config.TermsFileJSON)
			if err != nil {
				return nil, fmt.Errorf("loading terms file: %w", err)
			}
			terms = ts
			logger.Info("loaded forbidden terms from JSON", "path", config.TermsFileJSON)
		} else {
			ts, err := termstore.NewGormTermStore(db)
			if err != nil {
				return nil, fmt.Errorf("initializing term table: %w", err)
			}
			terms = ts
		}
		lex, err := classifier.NewLexical(ctx, terms)
		if err != nil {
			return nil, err
		}
		if config.LexicalPenalty > 0 {
			lex.SetPenalty(config.LexicalPenalty)
		}
		return lex, nil
	case "judge":
		if config.JudgeHost == "" {
			return nil, fmt.Errorf("judge classifier requires --judge-host")
		}
		logger.Info("configuring judge verdict backend", "host", config.JudgeHost)
		return classifier.NewJudge(config.JudgeHost, config.JudgeTimeout, config.JudgeRateLimit), nil
	case "openai":
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai classifier requires an API key")
		}
		logger.Info("configuring OpenAI verdict backend", "model", config.OpenAIModel)
		return classifier.NewOpenAIJudge(config.OpenAIAPIKey, config.OpenAIModel, config.JudgeTimeout), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend: %s", config.ClassifierKind)
	}
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (s *Server) Run(ctx context.Context, bind string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(bind)
	}()
	s.logger.Info("warden running", "bind", bind)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", "err", err)
	}
	s.pipeline.Sanctions.Shutdown()
	return nil
}
