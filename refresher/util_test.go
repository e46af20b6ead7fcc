package refresher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/history"
	"github.com/nfx/harvest/pmux"
	"github.com/nfx/harvest/results"
	"github.com/nfx/harvest/sources"
	"github.com/nfx/harvest/stats"
)

// row is ip, port and protocol
type row [3]string

func tablePage(rows ...row) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table class="layui-table"><tr>` +
		`<th>IP adress</th><th>Port</th><th>Country</th><th>City</th>` +
		`<th>Speed</th><th>Type</th><th>Anonymity</th></tr>`)
	for _, r := range rows {
		fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td><td>US</td><td>Dallas</td>`+
			`<td>100 ms</td><td>%s</td><td>High</td></tr>`, r[0], r[1], r[2])
	}
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}

type pages map[string]http.HandlerFunc

func static(body string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, body)
	}
}

func status(code int) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(code)
	}
}

func hanging(rw http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(2 * time.Second):
	}
}

type site struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func (s *site) Hits(page string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[page]
}

func newSite(p pages) *site {
	s := &site{hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		s.mu.Lock()
		s.hits[page]++
		s.mu.Unlock()
		handler, ok := p[page]
		if !ok {
			http.NotFound(rw, r)
			return
		}
		handler(rw, r)
	}))
	return s
}

type fixture struct {
	*Refresher
	output  string
	history string
	delays  []time.Duration
	logs    *bytes.Buffer
}

func (f *fixture) Ctx() context.Context {
	return app.Log.To(context.Background(), zerolog.New(f.logs))
}

func (f *fixture) Summary() stats.Summary {
	return f.stats.Snapshot()
}

func newFixture(t *testing.T, s *site, source app.Config) *fixture {
	client := pmux.NewClient()
	require.NoError(t, client.Configure(app.Config{
		"retries":     "1",
		"backoff":     "0s",
		"max_backoff": "1ms",
		"timeout":     "100ms",
	}))
	target := sources.NewTarget()
	conf := app.Config{
		"url": s.URL + "/?page=",
	}
	for k, v := range source {
		conf[k] = v
	}
	require.NoError(t, target.Configure(conf))
	f := &fixture{
		output:  filepath.Join(t.TempDir(), "proxies.txt"),
		history: filepath.Join(t.TempDir(), "history"),
		logs:    &bytes.Buffer{},
	}
	out := results.NewFile()
	require.NoError(t, out.Configure(app.Config{"file": f.output}))
	h := history.NewHistory()
	require.NoError(t, h.Configure(app.Config{"dir": f.history}))
	f.Refresher = NewRefresher(client, target, stats.NewStats(), h, out)
	f.sleep = func(ctx context.Context, d time.Duration) error {
		f.delays = append(f.delays, d)
		return nil
	}
	return f
}
