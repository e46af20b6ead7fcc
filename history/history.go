package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yosssi/gohtml"

	"github.com/nfx/harvest/app"
)

// History keeps prettified HTML of pages that could not be parsed, so that
// markup changes on the target site are easy to investigate.
type History struct {
	dir string
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Configure(conf app.Config) error {
	h.dir = conf.StrOr("dir", "")
	return nil
}

func (h *History) Enabled() bool {
	return h.dir != ""
}

// Record writes body of a page and returns the file name, or an empty string
// when history is disabled.
func (h *History) Record(ctx context.Context, page int, url string, body []byte, reason error) (string, error) {
	if !h.Enabled() {
		return "", nil
	}
	err := os.MkdirAll(h.dir, 0o755)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}
	filename := filepath.Join(h.dir, fmt.Sprintf("page-%d.html", page))
	content := fmt.Sprintf("<!-- %s\n%s -->\n%s\n", url, reason, gohtml.Format(string(body)))
	err = os.WriteFile(filename, []byte(content), 0o644)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}
	log := app.Log.From(ctx)
	log.Debug().Str("file", filename).Msg("recorded page")
	return filename, nil
}
