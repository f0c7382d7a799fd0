package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nbexport/internal/logfields"
)

// LiveReloadHub manages SSE clients for build-change broadcasts. The watch
// loop broadcasts each completed build's ID; connected pages reload when the
// ID changes.
type LiveReloadHub struct {
	mu      sync.Mutex
	nextID  int
	clients map[int]chan string
	lastID  string
	closed  bool
}

// NewLiveReloadHub creates an empty hub.
func NewLiveReloadHub() *LiveReloadHub {
	return &LiveReloadHub{clients: map[int]chan string{}}
}

// ServeHTTP implements the SSE endpoint.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	id := h.nextID
	h.nextID++
	ch := make(chan string, 8)
	h.clients[id] = ch
	last := h.lastID
	h.mu.Unlock()
	defer h.remove(id)

	if _, err := fmt.Fprintf(w, ": connected\n\n"); err != nil {
		return
	}
	if last != "" {
		if _, err := fmt.Fprintf(w, "data: {\"build\":%q}\n\n", last); err != nil {
			return
		}
	}
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case buildID := <-ch:
			if _, err := fmt.Fprintf(w, "data: {\"build\":%q}\n\n", buildID); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *LiveReloadHub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Broadcast announces a completed build to all connected clients. Slow
// clients are dropped rather than blocking the watch loop.
func (h *LiveReloadHub) Broadcast(buildID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || buildID == "" || buildID == h.lastID {
		return
	}
	h.lastID = buildID
	for id, ch := range h.clients {
		select {
		case ch <- buildID:
		default:
			delete(h.clients, id)
		}
	}
	slog.Debug("Live reload broadcast", logfields.BuildID(buildID), logfields.Count(len(h.clients)))
}

// Shutdown stops future broadcasts and connections.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id := range h.clients {
		delete(h.clients, id)
	}
}

// Script is the client snippet served at /livereload.js.
const Script = `(() => {
  if (window.__NBEXPORT_LR__) return;
  window.__NBEXPORT_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let first = true, current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (first) { current = p.build; first = false; return; }
        if (p.build && p.build !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`
