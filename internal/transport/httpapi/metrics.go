package httpapi

import (
	"fmt"
	"net/http"
)

// Metrics writes a minimal Prometheus exposition.
func (h *Handler) Metrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	st := h.sessions.Stats()
	fmt.Fprintf(rw, "# HELP geopits_sessions Current number of sessions.\n")
	fmt.Fprintf(rw, "# TYPE geopits_sessions gauge\n")
	fmt.Fprintf(rw, "geopits_sessions %d\n", st.Sessions)

	fmt.Fprintf(rw, "# HELP geopits_sessions_created_total Sessions created since start.\n")
	fmt.Fprintf(rw, "# TYPE geopits_sessions_created_total counter\n")
	fmt.Fprintf(rw, "geopits_sessions_created_total %d\n", st.SessionsTotal)

	fmt.Fprintf(rw, "# HELP geopits_active_caches Active caches across all sessions.\n")
	fmt.Fprintf(rw, "# TYPE geopits_active_caches gauge\n")
	fmt.Fprintf(rw, "geopits_active_caches %d\n", st.ActiveCaches)

	fmt.Fprintf(rw, "# HELP geopits_events_total World events emitted.\n")
	fmt.Fprintf(rw, "# TYPE geopits_events_total counter\n")
	fmt.Fprintf(rw, "geopits_events_total %d\n", st.EventsTotal)

	if h.index == nil {
		return
	}
	is := h.index.Stats()
	fmt.Fprintf(rw, "# HELP geopits_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE geopits_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "geopits_index_queue_depth %d\n", is.QueueDepth)
	fmt.Fprintf(rw, "# HELP geopits_index_dropped_total Index writes dropped on backpressure.\n")
	fmt.Fprintf(rw, "# TYPE geopits_index_dropped_total counter\n")
	fmt.Fprintf(rw, "geopits_index_dropped_total{kind=%q} %d\n", "event", is.DropEventTotal)
	fmt.Fprintf(rw, "geopits_index_dropped_total{kind=%q} %d\n", "session", is.DropSessionTotal)
}
