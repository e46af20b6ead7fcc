package results

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/pmux"
)

const DefaultFile = "proxies.txt"

// File is a flat list of proxies, one per line. Every save overwrites it.
type File struct {
	path string
}

func NewFile() *File {
	return &File{
		path: DefaultFile,
	}
}

func (f *File) Configure(conf app.Config) error {
	f.path = conf.StrOr("file", DefaultFile)
	return nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Save(ctx context.Context, proxies []pmux.Proxy) error {
	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", f.path, err)
	}
	w := bufio.NewWriter(file)
	for _, proxy := range proxies {
		_, err = w.WriteString(proxy.String() + "\n")
		if err != nil {
			file.Close()
			return fmt.Errorf("cannot write %s: %w", f.path, err)
		}
	}
	err = w.Flush()
	if err != nil {
		file.Close()
		return fmt.Errorf("cannot write %s: %w", f.path, err)
	}
	err = file.Close()
	if err != nil {
		return fmt.Errorf("cannot close %s: %w", f.path, err)
	}
	log := app.Log.From(ctx)
	log.Info().Int("count", len(proxies)).Str("file", f.path).Msg("saved proxies")
	return nil
}
