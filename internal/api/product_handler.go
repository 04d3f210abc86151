package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}
