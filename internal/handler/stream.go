package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// keepAlive is how often an idle event stream sends a comment line so
// proxies keep the connection open.
const keepAlive = 25 * time.Second

// StreamTrips handles GET /trips/stream.
// It sends the full trip list as a server-sent "trips" event on connect and
// again after every change. Slow clients only see the latest list.
func (s *Server) StreamTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, err := s.svc.Trips.Observe(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer sub.Cancel()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.log.WarnContext(ctx, "event stream not flushable", "error", err)
		return
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case trips, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(mapSlice(trips, tripToResponse))
			if err != nil {
				s.log.ErrorContext(ctx, "encode trip event", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: trips\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
