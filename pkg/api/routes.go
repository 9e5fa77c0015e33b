package api

import "net/http"

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	// Catalogs for the mapping editor
	mux.HandleFunc("GET /api/entity-types", s.handleEntityTypes)
	mux.HandleFunc("GET /api/source-fields/{entity}", s.handleSourceFields)
	mux.HandleFunc("GET /api/target-fields/{entity}", s.handleTargetFields)

	// Rule sets
	mux.HandleFunc("POST /mappings/import", s.handleImport)
	mux.HandleFunc("GET /mappings/{entity}", s.handleGetMapping)
	mux.HandleFunc("POST /mappings/{entity}", s.handleSaveMapping)
	mux.HandleFunc("DELETE /mappings/{entity}", s.handleDeleteMapping)
	mux.HandleFunc("POST /mappings/{entity}/validate", s.handleValidateMapping)
	mux.HandleFunc("GET /mappings/{entity}/export", s.handleExport)
	mux.HandleFunc("POST /test-mapping/{entity}", s.handleTestMapping)

	// Batch transformer
	mux.HandleFunc("POST /transform", s.handleTransform)
}
