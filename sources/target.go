package sources

import (
	"fmt"

	"github.com/nfx/harvest/app"
)

const DefaultSource = "freeproxy.world"

// Target is the source picked for harvesting, with configuration overrides
type Target struct {
	Source
}

func NewTarget() *Target {
	src, _ := ByName(DefaultSource)
	return &Target{src}
}

func (t *Target) Configure(conf app.Config) error {
	name := conf.StrOr("name", DefaultSource)
	src, ok := ByName(name)
	if !ok {
		return fmt.Errorf("unknown source: %s", name)
	}
	src.URL = conf.StrOr("url", src.URL)
	src.First = conf.IntOr("first", src.First)
	src.Last = conf.IntOr("last", src.Last)
	src.Delay = conf.DurOr("delay", src.Delay)
	if src.First < 0 || src.First > src.Last {
		return fmt.Errorf("invalid page range: %d..%d", src.First, src.Last)
	}
	strategy := conf.StrOr("strategy", "columns")
	switch strategy {
	case "columns":
		ce := src.Columns
		ce.Selector = conf.StrOr("selector", ce.Selector)
		ce.IP = conf.IntOr("ip", ce.IP)
		ce.Port = conf.IntOr("port", ce.Port)
		ce.Protocol = conf.IntOr("protocol", ce.Protocol)
		if ce.IP < 0 || ce.Port < 0 || ce.Protocol < 0 {
			return fmt.Errorf("negative column offset")
		}
		src.Extractor = ce
	case "headers":
		he := src.Headers
		he.IP = conf.StrOr("ip_header", he.IP)
		he.Port = conf.StrOr("port_header", he.Port)
		he.Protocol = conf.StrOr("protocol_header", he.Protocol)
		src.Extractor = he
	default:
		return fmt.Errorf("unknown strategy: %s", strategy)
	}
	t.Source = src
	return nil
}
