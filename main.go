package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"sofia-api/api"
	"sofia-api/config"
	"sofia-api/storage"
)

func main() {
	logger := log.New()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if err := cfg.ConfigureLogger(logger); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}

	var store api.Storage
	if backend != nil {
		defer backend.Close()
		if cfg.RedisURL != "" {
			rc := redis.NewClient(parseRedisOptions(cfg.RedisURL))
			defer rc.Close()
			backend = storage.NewCache(backend, rc, cfg.CacheTTL)
			logger.Infof("month cache enabled, ttl: %v", cfg.CacheTTL)
		}
		store = backend
		logger.Infof("storage backend: %s", backend.Source())
	} else {
		logger.Warn("no storage configured; serving generated days and rejecting writes")
	}

	var auth api.Authenticator
	switch cfg.AuthMode {
	case config.AuthHS256:
		auth = api.NewSecretAuth([]byte(cfg.JWTSecret), cfg.Audience, cfg.Issuer)
	case config.AuthJWKS:
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{})
		if err != nil {
			logger.Fatalf("jwks: %v", err)
		}
		defer jwks.EndBackground()
		auth = api.NewJWKSAuth(jwks, cfg.Audience, cfg.Issuer)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddleware("sofia"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderContentEncoding, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("64K"))
	e.Use(api.RateLimit(cfg.RateLimitRPS))

	api.Register(e, store, auth, logger)

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

// parseRedisOptions accepts a redis:// URL or an Azure-style
// "host:port,password=...,ssl=True" connection string.
func parseRedisOptions(conn string) *redis.Options {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			}
		}
	}
	return opts
}
