package main

import (
	"context"
	"net/http"
	"time"

	"coursewatch-backend/lib/configutil"
	configsqlite "coursewatch-backend/lib/configutil/sqlite"
	"coursewatch-backend/lib/mailer"
	"coursewatch-backend/lib/scrapers/banner"
	"coursewatch-backend/lib/serviceutil"
	"coursewatch-backend/lib/snapstore/db"
	"coursewatch-backend/lib/telemetry"
	"coursewatch-backend/services/coursewatch"
)

type Config struct {
	BaseUrl  string              `json:"base_url"`
	Term     string              `json:"term"`
	Format   string              `json:"format"`
	Database configsqlite.Struct `json:"database"`
	Smtp     mailer.SmtpConfig   `json:"smtp"`
	// seconds between availability checks, defaults to 10
	CheckInterval int `json:"check_interval"`
	// a keep-alive heartbeat runs every this many checks, defaults to 3
	KeepAliveEvery int `json:"keep_alive_every"`
	// consecutive failures before the check cadence degrades, defaults to 3
	BackoffAfter int `json:"backoff_after"`
	// interval multiplier while degraded, defaults to 5
	BackoffMultiplier int  `json:"backoff_multiplier"`
	Port              int  `json:"port"`
	Verbose           bool `json:"verbose"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	t, err := telemetry.SetupFromEnv(ctx, "coursewatchd")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(config.Verbose)

	database, err := config.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	format := banner.FormatJSON
	if config.Format == "html" {
		format = banner.FormatHTML
	}

	service, err := coursewatch.NewService(
		ctx,
		database,
		mailer.NewSmtpMailer(config.Smtp),
		coursewatch.Options{
			BaseUrl:           config.BaseUrl,
			Term:              config.Term,
			Format:            format,
			CheckInterval:     time.Duration(config.CheckInterval) * time.Second,
			KeepAliveEvery:    config.KeepAliveEvery,
			BackoffAfter:      config.BackoffAfter,
			BackoffMultiplier: config.BackoffMultiplier,
		},
	)
	if err != nil {
		serviceutil.Fatal("failed to init coursewatch", err)
	}

	mux := http.NewServeMux()
	service.RegisterHandlers(mux)

	port := config.Port
	if port == 0 {
		port = 8544
	}
	go serviceutil.StartHttpServer(port, mux)

	<-ctx.Done()
}
