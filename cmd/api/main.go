package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/eloity/tradelimits/internal/app"
	"github.com/eloity/tradelimits/internal/version"
	"github.com/eloity/tradelimits/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.DB.Close()
	defer application.Cache.Close()

	wk := worker.New(&worker.Worker{
		KafkaStream: application.Kafka,
		Limits:      application.Limits,
		Logger:      logger,
	})

	go wk.KYCApprovedWorker()
	go wk.TradeSettledWorker()

	return application.ServeHTTP()
}
