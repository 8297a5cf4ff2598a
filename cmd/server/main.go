package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/fewv-learns/client"
	"github.com/jrsteele09/fewv-learns/internal/config"
	"github.com/jrsteele09/fewv-learns/server"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/jrsteele09/fewv-learns/tokens/filestore"
	"github.com/jrsteele09/fewv-learns/tokens/redisstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory, err := tokenFactory(ctx, c)
	if err != nil {
		return err
	}

	registry := client.NewRegistry(factory, client.Options{
		BaseURL:            c.GetAPIBaseURL(),
		HTTP:               &http.Client{Timeout: c.GetAPITimeout()},
		EntitlementTimeout: c.GetEntitlementTimeout(),
		LoginRedirect:      c.GetLoginRedirect(),
		CatalogRedirect:    c.GetCatalogRedirect(),
	})
	go evictIdle(ctx, registry, c.GetSessionIdleTimeout())

	handler, err := server.New(c, registry)
	if err != nil {
		return err
	}

	server := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := listenAndServe(server); err != nil {
			log.Error().Err(err).Msg("Listener stopped")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(server)
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// tokenFactory opens the configured token backend
func tokenFactory(ctx context.Context, c config.Config) (tokens.Factory, error) {
	switch c.GetTokenStore() {
	case config.StoreFile:
		key, err := c.GetTokenStoreKey()
		if err != nil {
			return nil, err
		}
		if key == nil {
			log.Warn().Msg("TOKEN_STORE_KEY not set, token files are stored unsealed")
		}
		dir := filepath.Join(c.GetDataFolder(), "tokens")
		log.Info().Str("dir", dir).Msg("Using file token store")
		return filestore.NewFactory(dir, key), nil
	case config.StoreRedis:
		rdb, err := redisstore.Connect(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis token store")
		return redisstore.NewFactory(rdb, c.GetRedisPrefix(), c.GetRedisTokenTTL()), nil
	default:
		log.Info().Msg("Using in-memory token store")
		return tokens.NewMemoryFactory(), nil
	}
}

func evictIdle(ctx context.Context, registry *client.Registry, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Evict(idle); n > 0 {
				log.Debug().Int("evicted", n).Int("remaining", registry.Len()).Msg("Evicted idle browser sessions")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
