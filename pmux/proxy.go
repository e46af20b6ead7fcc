package pmux

import (
	"fmt"
	"strings"
)

// Proxy is a harvested endpoint, rendered as `scheme://host:port`.
// Cells are only trimmed and the scheme is lower-cased, so `SOCKS5`
// becomes `socks5`. Otherwise values are kept as advertised, without
// any validation.
type Proxy struct {
	Scheme string
	Host   string
	Port   string
}

func NewProxy(scheme, host, port string) Proxy {
	return Proxy{
		Scheme: strings.ToLower(strings.TrimSpace(scheme)),
		Host:   strings.TrimSpace(host),
		Port:   strings.TrimSpace(port),
	}
}

func (p Proxy) Address() string {
	return fmt.Sprintf("%s:%s", p.Host, p.Port)
}

func (p Proxy) String() string {
	return fmt.Sprintf("%s://%s", p.Scheme, p.Address())
}
