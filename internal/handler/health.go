package handler

import "net/http"

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.Ping(r.Context()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "OK", map[string]any{
		"database": "up",
		"beds":     h.engine.Layout().TotalBeds(),
	})
}
