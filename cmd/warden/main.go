package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "warden",
		Usage:   "chat auto-moderation daemon",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "user record database: sqlite:// path or postgres:// URL",
			Value:   "sqlite://data/warden/warden.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "back user records with redis instead of the database",
			EnvVars: []string{"WARDEN_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "classifier",
			Usage:   "classification backend: lexical, judge, or openai",
			Value:   "lexical",
			EnvVars: []string{"WARDEN_CLASSIFIER"},
		},
		&cli.StringFlag{
			Name:    "terms-file",
			Usage:   "JSON file with the forbidden-term list (lexical backend); falls back to the database term table",
			EnvVars: []string{"WARDEN_TERMS_FILE"},
		},
		&cli.StringFlag{
			Name:    "judge-host",
			Usage:   "base URL of the judge verdict service",
			EnvVars: []string{"WARDEN_JUDGE_HOST"},
		},
		&cli.DurationFlag{
			Name:    "judge-timeout",
			Value:   5 * time.Second,
			EnvVars: []string{"WARDEN_JUDGE_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "judge-rate-limit",
			Usage:   "max judge calls per second (0 disables the limiter)",
			Value:   10,
			EnvVars: []string{"WARDEN_JUDGE_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "openai-model",
			EnvVars: []string{"OPENAI_MODEL"},
		},
		&cli.IntFlag{
			Name:    "verdict-cache-size",
			Usage:   "verdict memoization cache entries (0 disables caching)",
			Value:   5_000,
			EnvVars: []string{"WARDEN_VERDICT_CACHE_SIZE"},
		},
		&cli.IntFlag{
			Name:    "baseline-rating",
			Usage:   "rating assigned to users on first contact",
			Value:   50,
			EnvVars: []string{"WARDEN_BASELINE_RATING"},
		},
		&cli.DurationFlag{
			Name:    "mute-duration",
			Value:   30 * time.Second,
			EnvVars: []string{"WARDEN_MUTE_DURATION"},
		},
		&cli.IntFlag{
			Name:    "restore-bonus",
			Usage:   "rating restored when a mute is released",
			Value:   20,
			EnvVars: []string{"WARDEN_RESTORE_BONUS"},
		},
		&cli.IntFlag{
			Name:    "lexical-penalty",
			Usage:   "flat rating penalty for a lexical match",
			Value:   10,
			EnvVars: []string{"WARDEN_LEXICAL_PENALTY"},
		},
		&cli.IntFlag{
			Name:    "min-message-len",
			Usage:   "messages at or below this length skip classification",
			Value:   3,
			EnvVars: []string{"WARDEN_MIN_MESSAGE_LEN"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3999",
			EnvVars: []string{"WARDEN_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"WARDEN_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(ctx, Config{
			DatabaseURL:      cctx.String("database-url"),
			RedisURL:         cctx.String("redis-url"),
			ClassifierKind:   cctx.String("classifier"),
			TermsFileJSON:    cctx.String("terms-file"),
			JudgeHost:        cctx.String("judge-host"),
			JudgeTimeout:     cctx.Duration("judge-timeout"),
			JudgeRateLimit:   cctx.Int("judge-rate-limit"),
			OpenAIAPIKey:     cctx.String("openai-api-key"),
			OpenAIModel:      cctx.String("openai-model"),
			VerdictCacheSize: cctx.Int("verdict-cache-size"),
			BaselineRating:   cctx.Int("baseline-rating"),
			MuteDuration:     cctx.Duration("mute-duration"),
			MinMessageLen:    cctx.Int("min-message-len"),
			RestoreBonus:     cctx.Int("restore-bonus"),
			LexicalPenalty:   cctx.Int("lexical-penalty"),
			Logger:           logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(ctx, cctx.String("bind")); err != nil {
			return fmt.Errorf("failed to run moderation service: %w", err)
		}
		return nil
	},
}
