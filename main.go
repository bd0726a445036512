package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/versus-server/internal/engine"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/history"
	"github.com/robalobadob/wordle/apps/versus-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/versus-server/internal/hub"
	"github.com/robalobadob/wordle/apps/versus-server/internal/session"
	"github.com/robalobadob/wordle/apps/versus-server/internal/snapshot"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	setupLogging(cfg)

	if cfg.JWTSecret == devSecret {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	dict, err := words.Load(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := dict.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	db, err := history.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open history db")
	}
	defer db.Close()
	if err := history.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrate history db")
	}
	results := history.NewStore(db)
	recorder := history.NewRecorder(results, 256)

	rt := hub.New(hub.WithAllowedOrigins(cfg.ClientOrigin))
	pubs := game.Fanout{rt, recorder}

	var mirror *snapshot.Mirror
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, snapshot mirror disabled")
		} else {
			mirror = snapshot.NewMirror(rdb, cfg.RedisPrefix, cfg.RoomIdleTTL)
			pubs = append(pubs, mirror)
		}
	}

	eng := engine.New(store.NewRegistry(), dict, pubs, engine.WithStrictGuesses(cfg.StrictGuesses))
	api := httpserver.New(httpserver.Deps{
		Engine:  eng,
		Hub:     rt,
		Tokens:  session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Words:   dict,
		History: results,
		Origin:  cfg.ClientOrigin,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return rt.Run(ctx) })
	g.Go(func() error { return recorder.Run(ctx) })
	if mirror != nil {
		g.Go(func() error { return mirror.Run(ctx) })
	}
	g.Go(func() error {
		t := time.NewTicker(cfg.ReapInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				eng.Reap(ctx, cfg.RoomIdleTTL, cfg.RoomFinishedTTL)
			}
		}
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting versus-server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
