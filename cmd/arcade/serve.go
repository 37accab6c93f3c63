package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/httpapi"
	"github.com/vovakirdan/arcade-verifier/internal/ratelimit"
	"github.com/vovakirdan/arcade-verifier/internal/session"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
	"github.com/vovakirdan/arcade-verifier/internal/verify"
)

var (
	flagAddr    string
	flagBackend string
	flagEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verifier HTTP server",
	Long: `Start the HTTP server that issues sessions and verifies submitted runs.

Settings come from the environment (a .env file is loaded first when present)
and can be overridden with flags:

  ARCADE_ADDR                 Listen address (default :8080)
  ARCADE_DB                   SQLite database path
  ARCADE_SESSION_BACKEND      sqlite, redis or memory (default sqlite)
  ARCADE_REDIS_URL            Redis address for the redis backend
  ARCADE_REDIS_PASSWORD       Redis password
  ARCADE_SESSIONS_PER_MINUTE  Session creation limit per client (0 disables)
  ARCADE_CORS_ORIGIN          Access-Control-Allow-Origin value
  ARCADE_LOG_LEVEL            debug, info, warn or error

With the redis backend sessions live in Redis and scores stay in SQLite.
The memory backend keeps everything in process and loses it on exit.

Examples:
  arcade serve
  arcade serve --addr :9000 --backend memory
  ARCADE_SESSION_BACKEND=redis arcade serve`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides ARCADE_ADDR)")
	serveCmd.Flags().StringVar(&flagBackend, "backend", "", "Session backend: sqlite, redis or memory (overrides ARCADE_SESSION_BACKEND)")
	serveCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "Environment file to load")
}

// stores is the storage a server runs on. close releases whatever was
// opened.
type stores struct {
	sessions storage.SessionStore
	scores   storage.ScoreStore
	closers  []io.Closer
}

func (s *stores) close() {
	for _, c := range s.closers {
		c.Close()
	}
}

func runServe(cmd *cobra.Command, _ []string) {
	env := config.LoadServerEnv(flagEnvFile)
	if flagAddr != "" {
		env.Addr = flagAddr
	}
	if flagBackend != "" {
		env.SessionBackend = flagBackend
	}
	if cmd.Flags().Changed("db") || env.DBPath == "" {
		env.DBPath = flagDBPath
	}

	logger := newLogger("arcade")
	if lvl, err := log.ParseLevel(env.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using info", "level", env.LogLevel)
	}

	rulesPath, runnerPath := env.RulesPath, env.RunnerPath
	if cmd.Flags().Changed("rules") {
		rulesPath = flagRulesPath
	}
	if cmd.Flags().Changed("runner") {
		runnerPath = flagRunnerPath
	}
	rules, runnerCfg, err := loadConfigs(rulesPath, runnerPath)
	if err != nil {
		logger.Fatal("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, env, rules)
	if err != nil {
		logger.Fatal("open storage", "backend", env.SessionBackend, "error", err)
	}
	defer st.close()

	sessions := session.NewManager(st.sessions, rules, session.WithLogger(logger.WithPrefix("session")))
	pipeline := verify.NewPipeline(sessions, st.scores, runnerCfg, logger.WithPrefix("verify"))
	limiter := ratelimit.PerMinute(env.SessionsPerMin)

	go sessions.RunJanitor(ctx, time.Minute)
	go sweepLimiter(ctx, limiter, time.Minute)

	srv := httpapi.New(httpapi.Config{
		Sessions:   sessions,
		Pipeline:   pipeline,
		Scores:     st.scores,
		Runner:     runnerCfg,
		Limiter:    limiter,
		Logger:     logger.WithPrefix("http"),
		CORSOrigin: env.CORSAllowOrigin,
	})

	logger.Info("verifier ready",
		"backend", env.SessionBackend,
		"fingerprint", config.Fingerprint(rules, runnerCfg),
		"tick_rate", rules.TickRate,
	)
	if err := srv.ListenAndServe(ctx, env.Addr); err != nil {
		logger.Error("server error", "error", err)
		st.close()
		os.Exit(1)
	}
}

// openStores selects session and score storage for the configured backend.
func openStores(ctx context.Context, env config.Server, rules config.Rules) (*stores, error) {
	switch env.SessionBackend {
	case "memory":
		mem := storage.NewMemory()
		return &stores{sessions: mem, scores: mem}, nil

	case "sqlite":
		db, err := storage.Open(env.DBPath)
		if err != nil {
			return nil, err
		}
		return &stores{sessions: db, scores: db, closers: []io.Closer{db}}, nil

	case "redis":
		db, err := storage.Open(env.DBPath)
		if err != nil {
			return nil, err
		}
		rs, err := storage.NewRedisSessions(ctx, storage.RedisOptions{
			Addr:     env.RedisURL,
			Password: env.RedisPassword,
			TTL:      2 * rules.SessionExpiry(),
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		return &stores{sessions: rs, scores: db, closers: []io.Closer{rs, db}}, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", env.SessionBackend)
	}
}

// sweepLimiter drops idle rate limit buckets every interval.
func sweepLimiter(ctx context.Context, l *ratelimit.Limiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(10 * time.Minute)
		}
	}
}
