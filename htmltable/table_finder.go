package htmltable

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nfx/harvest/app"
)

// Page holds all tables matching a CSS selector, in document order
type Page struct {
	Tables []*Table
	ctx    context.Context
}

func New(ctx context.Context, r io.Reader, selector string) (*Page, error) {
	document, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	if selector == "" {
		selector = "table"
	}
	page := &Page{
		ctx: ctx,
	}
	document.Find(selector).Each(func(i int, s *goquery.Selection) {
		if goquery.NodeName(s) != "table" {
			return
		}
		page.Tables = append(page.Tables, page.parseTable(s))
	})
	return page, nil
}

func NewFromString(r, selector string) (*Page, error) {
	return New(context.Background(), strings.NewReader(r), selector)
}

func (page *Page) Len() int {
	return len(page.Tables)
}

// First returns the first matching table, if any
func (page *Page) First() (*Table, bool) {
	if len(page.Tables) == 0 {
		return nil, false
	}
	return page.Tables[0], true
}

// strippedText concatenates all text nodes with surrounding whitespace removed
func strippedText(s *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return sb.String()
}

func (page *Page) parseTable(table *goquery.Selection) *Table {
	rows := table.Find("tr")
	nt := &Table{}
	if rows.Length() == 0 {
		return nt
	}
	// first row is always a header, even if it has only td cells
	rows.Eq(0).Find("td, th").Each(func(i int, th *goquery.Selection) {
		nt.Header = append(nt.Header, strippedText(th))
	})
	rows.Slice(1, rows.Length()).Each(func(i int, tr *goquery.Selection) {
		row := []string{}
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			row = append(row, strippedText(td))
		})
		nt.Rows = append(nt.Rows, row)
	})
	log := app.Log.From(page.ctx)
	log.Trace().
		Strs("columns", nt.Header).
		Int("rows", len(nt.Rows)).
		Msg("found table")
	return nt
}

func (page *Page) FindWithColumns(columns ...string) (*Table, error) {
	found := -1
	for idx, table := range page.Tables {
		if !table.HasColumns(columns...) {
			continue
		}
		if found >= 0 {
			return nil, fmt.Errorf("more than one table matches columns `%s`: "+
				"[%d] %s and [%d] %s",
				strings.Join(columns, ", "),
				found, page.Tables[found],
				idx, table,
			)
		}
		found = idx
	}
	if found < 0 {
		return nil, fmt.Errorf("cannot find table with columns: %s",
			strings.Join(columns, ", "))
	}
	return page.Tables[found], nil
}

// Table keeps cells of every data row as-is, so rows may be shorter or
// longer than the header
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns offset of a header, or -1
func (table *Table) Column(name string) int {
	for idx, header := range table.Header {
		if header == name {
			return idx
		}
	}
	return -1
}

func (table *Table) HasColumns(columns ...string) bool {
	for _, col := range columns {
		if table.Column(col) < 0 {
			return false
		}
	}
	return true
}

func (table *Table) String() string {
	return fmt.Sprintf("Table[%s] (%d rows)", strings.Join(table.Header, ", "), len(table.Rows))
}
