package httpapi

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler reports whether the server has a usable timetable loaded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.Provider == nil || s.Provider.NumStops() == 0 {
		sendResponse(w, s.Logger, http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Detail: "no timetable loaded",
		})
		return
	}
	sendResponse(w, s.Logger, http.StatusOK, healthResponse{Status: "ok"})
}
