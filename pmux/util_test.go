package pmux

import (
	"fmt"
	"net/http"
)

// forwardingProxy answers plain HTTP proxy requests on behalf of destination
func forwardingProxy(prefix string) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == "CONNECT" || !r.URL.IsAbs() {
			http.Error(rw, "not a proxy request", 405)
			return
		}
		fmt.Fprintf(rw, "%s: %s", prefix, r.URL)
	})
}
