package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/fieldmap/pkg/api/types"
	"github.com/getmockd/fieldmap/pkg/httputil"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/service"
)

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, types.HealthResponse{
		Status:    "ok",
		Uptime:    s.Uptime(),
		Timestamp: time.Now().UTC(),
	})
}

// handleEntityTypes handles GET /api/entity-types.
func (s *Server) handleEntityTypes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, types.EntityTypesResponse{EntityTypes: s.svc.EntityTypes()})
}

// handleSourceFields handles GET /api/source-fields/{entity}.
func (s *Server) handleSourceFields(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	fields, fallback, err := s.svc.SourceFields(r.Context(), entity)
	if err != nil {
		s.writeServiceError(w, r, "list source fields", err)
		return
	}
	httputil.WriteOK(w, types.FieldsResponse{Fields: fields, Fallback: fallback})
}

// handleTargetFields handles GET /api/target-fields/{entity}.
func (s *Server) handleTargetFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.svc.TargetFields(r.Context(), entityParam(r))
	if err != nil {
		s.writeServiceError(w, r, "list target fields", err)
		return
	}
	httputil.WriteOK(w, types.FieldsResponse{Fields: fields})
}

// handleGetMapping handles GET /mappings/{entity}. When nothing has been
// saved the defaults are returned with source "defaults".
func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	rs, src, err := s.svc.GetRuleSet(r.Context(), entity)
	if err != nil {
		s.writeServiceError(w, r, "get mapping", err)
		return
	}
	httputil.WriteOK(w, types.RuleSetResponse{Entity: entity, Rules: rs.Flat(), Source: string(src)})
}

// handleSaveMapping handles POST /mappings/{entity}[?strict=true].
func (s *Server) handleSaveMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	if err := s.svc.CheckEntity(entity); err != nil {
		s.writeServiceError(w, r, "save mapping", err)
		return
	}

	flat, err := readFlat(w, r)
	if err != nil {
		s.writeServiceError(w, r, "save mapping", err)
		return
	}
	if flat == nil {
		httputil.WriteBadRequest(w, "malformed_input", "No mapping data provided")
		return
	}

	strict, _ := strconv.ParseBool(r.URL.Query().Get("strict"))
	rs, issues, err := s.svc.SaveRuleSet(r.Context(), entity, flat, service.SaveOptions{Strict: strict})
	if err != nil {
		s.writeServiceError(w, r, "save mapping", err)
		return
	}

	httputil.WriteOK(w, types.SaveResponse{
		Status:  "success",
		Message: fmt.Sprintf("Mapping saved for %s", entity),
		Entity:  entity,
		Rules:   rs.Flat(),
		Issues:  issues,
	})
}

// handleDeleteMapping handles DELETE /mappings/{entity}.
func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRuleSet(r.Context(), entityParam(r)); err != nil {
		s.writeServiceError(w, r, "delete mapping", err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleValidateMapping handles POST /mappings/{entity}/validate.
func (s *Server) handleValidateMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	if err := s.svc.CheckEntity(entity); err != nil {
		s.writeServiceError(w, r, "validate mapping", err)
		return
	}
	flat, err := readFlat(w, r)
	if err != nil {
		s.writeServiceError(w, r, "validate mapping", err)
		return
	}
	rs, issues, err := s.svc.ValidateRuleSet(r.Context(), entity, flat)
	if err != nil {
		s.writeServiceError(w, r, "validate mapping", err)
		return
	}
	httputil.WriteOK(w, types.ValidateResponse{
		Entity: entity,
		Rules:  rs.Flat(),
		Issues: issues,
		Valid:  len(issues) == 0,
	})
}

// handleTestMapping handles POST /test-mapping/{entity}. An empty body
// tests the current rule set.
func (s *Server) handleTestMapping(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	if err := s.svc.CheckEntity(entity); err != nil {
		s.writeServiceError(w, r, "test mapping", err)
		return
	}
	flat, err := readFlat(w, r)
	if err != nil {
		s.writeServiceError(w, r, "test mapping", err)
		return
	}

	report, err := s.svc.TestMapping(r.Context(), entity, flat)
	if err != nil {
		s.writeServiceError(w, r, "test mapping", err)
		return
	}
	httputil.WriteOK(w, types.NewTestMappingResponse(report))
}

// handleExport handles GET /mappings/{entity}/export?format=json|yaml.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	format := mapping.ParseFormat(r.URL.Query().Get("format"))
	if format == mapping.FormatUnknown {
		httputil.WriteBadRequest(w, "unsupported_format", "format must be json or yaml")
		return
	}

	data, err := s.svc.ExportRuleSet(r.Context(), entity, format)
	if err != nil {
		s.writeServiceError(w, r, "export mapping", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", mapping.FileName(entity, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport handles POST /mappings/import. The payload is parsed and
// returned in rule order; nothing is saved.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httputil.WriteBadRequest(w, "malformed_input", err.Error())
		return
	}

	format := mapping.ParseFormat(r.URL.Query().Get("format"))
	if r.URL.Query().Get("format") == "" {
		format = formatFromContentType(r.Header.Get("Content-Type"))
	}
	if format == mapping.FormatUnknown {
		httputil.WriteBadRequest(w, "unsupported_format", "format must be json or yaml")
		return
	}

	flat, err := s.svc.ImportRuleSet(body, format)
	if err != nil {
		s.writeServiceError(w, r, "import mapping", err)
		return
	}
	httputil.WriteOK(w, types.ImportResponse{Rules: flat, Count: len(flat)})
}

// handleTransform handles POST /transform.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		httputil.WriteBadRequest(w, "invalid_request", "No data provided")
		return
	}

	var req types.TransformRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", "Invalid JSON in request body")
		return
	}
	if req.EntityType == "" {
		httputil.WriteBadRequest(w, "invalid_request", "entity_type is required")
		return
	}
	if req.Data == nil {
		req.Data = []map[string]any{}
	}

	batch, err := s.svc.Transform(r.Context(), mapping.ParseEntityType(string(req.EntityType)), req.Data)
	if err != nil {
		s.writeServiceError(w, r, "transform", err)
		return
	}
	unresolved := 0
	for _, res := range batch.Results {
		unresolved += len(res.Unresolved)
	}
	s.metrics.RecordsTransformed(string(batch.Entity), len(batch.Results), unresolved)
	httputil.WriteOK(w, batch.Envelope())
}

func entityParam(r *http.Request) mapping.EntityType {
	return mapping.ParseEntityType(r.PathValue("entity"))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// readFlat decodes a flat mapping body. It accepts the bare flat object or
// the {"rules": {...}} envelope returned by GET. An empty body yields nil.
func readFlat(w http.ResponseWriter, r *http.Request) (mapping.FlatMapping, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, &mapping.MalformedInputError{Reason: err.Error(), Err: err}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var envelope map[string]json.RawMessage
	if json.Unmarshal(body, &envelope) == nil && len(envelope) == 1 {
		if inner, ok := envelope["rules"]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
			body = inner
		}
	}

	flat, err := mapping.Import(body)
	if err != nil {
		return nil, err
	}
	return flat, nil
}

func formatFromContentType(ct string) mapping.Format {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return mapping.FormatJSON
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return mapping.FormatYAML
	default:
		return mapping.FormatJSON
	}
}
