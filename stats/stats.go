package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/pmux"
)

type Outcome string

const (
	Fetched Outcome = "ok"
	Failed  Outcome = "failed"
	Timeout Outcome = "timeout"
	NoTable Outcome = "no_table"
)

// Stats counts outcomes of every page and optionally exports them in
// Prometheus text format, for node_exporter textfile collector.
type Stats struct {
	registry *prometheus.Registry
	pages    *prometheus.CounterVec
	proxies  *prometheus.CounterVec
	lastRun  prometheus.Gauge
	textfile string
	summary  Summary
}

func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harvest",
			Name:      "pages_total",
			Help:      "Pages attempted, by outcome",
		}, []string{"source", "outcome"}),
		proxies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "harvest",
			Name:      "proxies_total",
			Help:      "Proxies extracted, by scheme",
		}, []string{"source", "scheme"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "harvest",
			Name:      "last_run_timestamp_seconds",
			Help:      "When metrics were written last time",
		}),
		summary: Summary{
			Pages: map[Outcome]int{},
		},
	}
	s.registry.MustRegister(s.pages, s.proxies, s.lastRun)
	return s
}

func (s *Stats) Configure(conf app.Config) error {
	s.textfile = conf.StrOr("textfile", "")
	return nil
}

// Page records outcome of a single page and proxies found on it
func (s *Stats) Page(source string, outcome Outcome, found []pmux.Proxy) {
	s.pages.WithLabelValues(source, string(outcome)).Inc()
	s.summary.Pages[outcome]++
	for _, p := range found {
		s.proxies.WithLabelValues(source, p.Scheme).Inc()
	}
	s.summary.Proxies += len(found)
}

func (s *Stats) Snapshot() Summary {
	pages := map[Outcome]int{}
	for k, v := range s.summary.Pages {
		pages[k] = v
	}
	return Summary{
		Pages:   pages,
		Proxies: s.summary.Proxies,
	}
}

// Flush writes metrics to the configured textfile, if any
func (s *Stats) Flush() error {
	if s.textfile == "" {
		return nil
	}
	s.lastRun.SetToCurrentTime()
	err := prometheus.WriteToTextfile(s.textfile, s.registry)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

type Summary struct {
	Pages   map[Outcome]int
	Proxies int
}

func (s Summary) Apply(e *zerolog.Event) {
	for outcome, count := range s.Pages {
		e.Int(string(outcome), count)
	}
	e.Int("proxies", s.Proxies)
}

func (s Summary) String() string {
	b := []string{}
	for outcome, count := range s.Pages {
		b = append(b, fmt.Sprintf("%s=%d", outcome, count))
	}
	sort.Strings(b)
	b = append(b, fmt.Sprintf("proxies=%d", s.Proxies))
	return strings.Join(b, " ")
}
