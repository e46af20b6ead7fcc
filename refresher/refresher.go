package refresher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/history"
	"github.com/nfx/harvest/pmux"
	"github.com/nfx/harvest/results"
	"github.com/nfx/harvest/sources"
	"github.com/nfx/harvest/stats"
)

type pageClient interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type historyContract interface {
	Record(ctx context.Context, page int, url string, body []byte, reason error) (string, error)
}

type statsContract interface {
	Page(source string, outcome stats.Outcome, found []pmux.Proxy)
	Snapshot() stats.Summary
	Flush() error
}

type resultsContract interface {
	Save(ctx context.Context, proxies []pmux.Proxy) error
}

type errorContext interface {
	Apply(e *zerolog.Event)
}

// Refresher walks through all pages of a source one by one, and saves
// everything it managed to find.
type Refresher struct {
	client  pageClient
	target  *sources.Target
	stats   statsContract
	history historyContract
	results resultsContract
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewRefresher(client *pmux.Client, target *sources.Target, stats *stats.Stats,
	history *history.History, results *results.File) *Refresher {
	return &Refresher{
		client:  client,
		target:  target,
		stats:   stats,
		history: history,
		results: results,
		sleep:   sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run harvests all pages and saves proxies, unless nothing is found
func (ref *Refresher) Run(ctx context.Context) error {
	ctx = app.Log.WithStr(ctx, "source", ref.target.Name())
	log := app.Log.From(ctx)
	found, err := ref.Harvest(ctx)
	if err != nil {
		return err
	}
	summary := ref.stats.Snapshot()
	log.Info().Func(summary.Apply).Msg("finished harvesting")
	err = ref.stats.Flush()
	if err != nil {
		log.Warn().Err(err).Msg("cannot write metrics")
	}
	if len(found) == 0 {
		log.Info().Msg("no proxies found")
		return nil
	}
	return ref.results.Save(ctx, found)
}

// Harvest fetches every page of the target in order. Failed pages contribute
// nothing, and only context cancellation stops the loop early.
func (ref *Refresher) Harvest(ctx context.Context) ([]pmux.Proxy, error) {
	found := []pmux.Proxy{}
	for i, page := range ref.target.Pages() {
		if i > 0 {
			// no pause after the last page
			err := ref.sleep(ctx, ref.target.Delay)
			if err != nil {
				return found, err
			}
		}
		pageCtx := app.Log.WithInt(ctx, "page", page)
		proxies, err := ref.fetchPage(pageCtx, page)
		if ctx.Err() != nil {
			return found, ctx.Err()
		}
		ref.report(pageCtx, proxies, err)
		found = append(found, proxies...)
	}
	return found, nil
}

func (ref *Refresher) fetchPage(ctx context.Context, page int) ([]pmux.Proxy, error) {
	url := ref.target.PageURL(page)
	log := app.Log.From(ctx)
	log.Info().Str("url", url).Msg("fetching page")
	body, err := ref.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	found, err := ref.target.Extractor.Extract(ctx, body)
	if err != nil {
		_, herr := ref.history.Record(ctx, page, url, body, err)
		if herr != nil {
			log.Warn().Err(herr).Msg("cannot record page")
		}
		return nil, err
	}
	return found, nil
}

func (ref *Refresher) report(ctx context.Context, found []pmux.Proxy, err error) {
	log := app.Log.From(ctx)
	source := ref.target.Name()
	if err == nil {
		ref.stats.Page(source, stats.Fetched, found)
		log.Info().Int("count", len(found)).Msg("found proxies")
		return
	}
	var event *zerolog.Event
	var outcome stats.Outcome
	var msg string
	switch {
	case pmux.IsTimeout(err):
		outcome, msg = stats.Timeout, "timeout fetching page, skipping"
		event = log.Warn()
	case errors.Is(err, sources.ErrNoTable):
		outcome, msg = stats.NoTable, "no table found on page"
		event = log.Warn()
	default:
		outcome, msg = stats.Failed, "cannot fetch page"
		event = log.Error()
	}
	var ec errorContext
	if errors.As(err, &ec) {
		ec.Apply(event)
	}
	event.Err(err).Msg(msg)
	ref.stats.Page(source, outcome, nil)
}
