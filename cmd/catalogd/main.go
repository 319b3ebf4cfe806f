package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ProductDesk/internal/auth"
	"ProductDesk/internal/catalog"
	"ProductDesk/internal/config"
	"ProductDesk/pkg/kit"
)

const service = "catalog"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(mintToken(os.Args[2:]))
	}

	fs := pflag.NewFlagSet("catalogd", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("port", "", "listen port")
	fs.String("database-url", "", "postgres DSN; empty keeps products in memory")
	fs.String("log-level", "", "debug, info, warn or error")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadServer(*cfgFile, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := kit.NewLoggerLevel(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}
	defer closeStore()

	s := &catalog.Server{Store: store, Log: log}
	if cfg.JWTSecret != "" {
		s.Tokens = auth.NewTokenMaker(cfg.JWTSecret)
	} else {
		log.Warn("JWT_SECRET not set, write routes are open")
	}
	if cfg.WriteRateLimit > 0 {
		s.WriteLimiter = kit.NewIPRateLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Server, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		return catalog.NewStore(), func() {}, nil
	}

	db, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("using postgres store")
	return db, func() { _ = db.Close() }, nil
}

// mintToken prints a write token signed with the configured secret.
func mintToken(args []string) int {
	fs := pflag.NewFlagSet("catalogd token", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "config file")
	subject := fs.String("subject", "catalogctl", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	_ = fs.Parse(args)

	cfg, err := config.LoadServer(*cfgFile, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		return 2
	}

	tok, err := auth.NewTokenMaker(cfg.JWTSecret).New(*subject, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(tok)
	return 0
}
