package http

import (
	"bytes"
	"net/http"

	"quickspend/internal/log"
	"quickspend/internal/view"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.api.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Readiness check failed", err, "ping", nil)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK

	page, err := s.renderer.Refresh(ctx, parseViewState(r.URL.Query()))
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Render list page failed", err, log.OpRender, nil)
		status = http.StatusInternalServerError
	}

	var buf bytes.Buffer
	if err := view.WriteHTML(&buf, page); err != nil {
		log.FromContext(ctx).LogError(ctx, "Template execution failed", err, log.OpRender, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
