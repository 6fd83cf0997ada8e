package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/yama/internal/buildinfo"
	"github.com/dmitrijs2005/yama/internal/client/cli"
	"github.com/dmitrijs2005/yama/internal/client/client"
	"github.com/dmitrijs2005/yama/internal/client/config"
	"github.com/dmitrijs2005/yama/internal/client/services"
	"github.com/dmitrijs2005/yama/internal/client/tokens"
	"github.com/dmitrijs2005/yama/internal/filex"
	"github.com/dmitrijs2005/yama/internal/logging"
	"github.com/dmitrijs2005/yama/internal/markdown"
	"github.com/joho/godotenv"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	// a missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.LogFile != "" {
		if err := filex.EnsureParentDir(cfg.LogFile); err != nil {
			log.Fatalf("log file: %v", err)
		}
	}
	logger, closer := logging.NewLogger(cfg.LogFile, cfg.LogLevel)
	defer closer.Close()

	repo, err := client.InitStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer repo.Close()

	store, err := tokens.NewStore(ctx, repo)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	api, err := client.NewClient(cfg.APIBaseURL, store,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithLogger(logger.With("component", "client")),
	)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(
		services.NewAuthService(api, store),
		services.NewFileService(api),
		markdown.New(),
		logger,
		os.Stdin,
		os.Stdout,
	)
	app.Run(ctx)
}
