package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// pathParam возвращает параметр маршрута chi
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
