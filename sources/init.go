package sources

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source is a paginated proxy list. Page number is appended to URL.
type Source struct {
	ID       int
	name     string
	Homepage string
	URL      string
	First    int
	Last     int

	// Delay is the pause between two consecutive pages
	Delay time.Duration

	// Columns and Headers are default settings of both extraction
	// strategies, while Extractor is the one in use.
	Columns   ColumnsExtractor
	Headers   HeadersExtractor
	Extractor Extractor
}

func (s Source) Name() string {
	if s.name != "" {
		return s.name
	}
	if s.Homepage != "" {
		page, err := url.Parse(s.Homepage)
		if err != nil {
			return fmt.Sprintf("src:%d", s.ID)
		}
		return strings.TrimPrefix(page.Host, "www.")
	}
	return fmt.Sprintf("src:%d", s.ID)
}

func (s Source) PageURL(page int) string {
	return s.URL + strconv.Itoa(page)
}

// Pages returns page numbers from first to last, inclusive
func (s Source) Pages() (pages []int) {
	for page := s.First; page <= s.Last; page++ {
		pages = append(pages, page)
	}
	return pages
}

var Sources = []Source{}

func ByName(name string) (Source, bool) {
	for _, s := range Sources {
		if s.Name() != name {
			continue
		}
		return s, true
	}
	return Source{}, false
}
