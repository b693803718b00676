package httpapi

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

type providerStats struct {
	NumStops int
}

// debugHandler dumps a plain-text snapshot of the loaded provider, for
// operators poking at a running instance. Disabled unless Server.Debug is
// set, since spew.Sdump is not something to leave open on a public
// deployment.
func (s *Server) debugHandler(w http.ResponseWriter, r *http.Request) {
	if !s.Debug {
		http.NotFound(w, r)
		return
	}

	stats := providerStats{}
	if s.Provider != nil {
		stats.NumStops = s.Provider.NumStops()
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(spew.Sdump(stats)))
}
