package sources

import (
	"bytes"
	"context"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/htmltable"
	"github.com/nfx/harvest/pmux"
)

// Extractor turns raw HTML of a single page into proxies, in row order
type Extractor interface {
	Extract(ctx context.Context, body []byte) ([]pmux.Proxy, error)
}

// ColumnsExtractor takes the first table matching CSS selector and reads
// cells by fixed offsets. The header row is skipped.
type ColumnsExtractor struct {
	Selector string
	IP       int
	Port     int
	Protocol int
}

// cells is the minimal number of cells in a row to have all columns
func (ce ColumnsExtractor) cells() int {
	max := ce.IP
	if ce.Port > max {
		max = ce.Port
	}
	if ce.Protocol > max {
		max = ce.Protocol
	}
	return max + 1
}

func (ce ColumnsExtractor) Extract(ctx context.Context, body []byte) (found []pmux.Proxy, err error) {
	page, err := htmltable.New(ctx, bytes.NewReader(body), ce.Selector)
	if err != nil {
		return nil, err
	}
	table, ok := page.First()
	if !ok {
		return nil, wrapError(ErrNoTable, strEC{"selector", ce.Selector})
	}
	return extractRows(ctx, table.Rows, ce.cells(), func(row []string) pmux.Proxy {
		return pmux.NewProxy(row[ce.Protocol], row[ce.IP], row[ce.Port])
	}), nil
}

// HeadersExtractor finds the only table having all three column names,
// so that it keeps working even when column order changes.
type HeadersExtractor struct {
	IP       string
	Port     string
	Protocol string
}

func (he HeadersExtractor) Extract(ctx context.Context, body []byte) ([]pmux.Proxy, error) {
	page, err := htmltable.New(ctx, bytes.NewReader(body), "table")
	if err != nil {
		return nil, err
	}
	table, err := page.FindWithColumns(he.IP, he.Port, he.Protocol)
	if err != nil {
		return nil, wrapError(ErrNoTable, strEC{"reason", err.Error()})
	}
	ce := ColumnsExtractor{
		IP:       table.Column(he.IP),
		Port:     table.Column(he.Port),
		Protocol: table.Column(he.Protocol),
	}
	return extractRows(ctx, table.Rows, ce.cells(), func(row []string) pmux.Proxy {
		return pmux.NewProxy(row[ce.Protocol], row[ce.IP], row[ce.Port])
	}), nil
}

func extractRows(ctx context.Context, rows [][]string, cells int,
	cb func(row []string) pmux.Proxy) (found []pmux.Proxy) {
	log := app.Log.From(ctx)
	for idx, row := range rows {
		if len(row) < cells {
			log.Debug().
				Int("row", idx+1).
				Int("cells", len(row)).
				Int("expected", cells).
				Msg("skipping short row")
			continue
		}
		proxy := cb(row)
		proxyLog := app.Log.From(app.Log.WithStringer(ctx, "proxy", proxy))
		proxyLog.Trace().Int("row", idx+1).Msg("extracted proxy")
		found = append(found, proxy)
	}
	return found
}
