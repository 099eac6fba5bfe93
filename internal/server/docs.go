package server

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

const swaggerDocPath = "/swagger/doc.json"

// mountDocs serves the OpenAPI document and the Swagger UI that renders it.
// Both stay outside the auth group so the UI can load before a token exists.
func (s *Server) mountDocs(r chi.Router) {
	r.Get(swaggerDocPath, s.openAPIHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(swaggerDocPath)))
}

func (s *Server) openAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(openAPIDoc); err != nil {
		s.logger.Error("failed to write openapi document", "error", err)
	}
}
