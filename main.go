package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/history"
	"github.com/nfx/harvest/pmux"
	"github.com/nfx/harvest/refresher"
	"github.com/nfx/harvest/results"
	"github.com/nfx/harvest/sources"
	"github.com/nfx/harvest/stats"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := app.Run(ctx, app.Factories{
		"client":    pmux.NewClient,
		"source":    sources.NewTarget,
		"stats":     stats.NewStats,
		"history":   history.NewHistory,
		"output":    results.NewFile,
		"harvester": refresher.NewRefresher,
	}, "harvester")
	if err != nil {
		log.Fatal().Err(err).Msg("harvest failed")
	}
}
