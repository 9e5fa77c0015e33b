package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fieldmap/pkg/api/types"
	"github.com/getmockd/fieldmap/pkg/crmclient"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/metrics"
	"github.com/getmockd/fieldmap/pkg/mockapi"
	"github.com/getmockd/fieldmap/pkg/service"
	"github.com/getmockd/fieldmap/pkg/store"
	"github.com/getmockd/fieldmap/pkg/store/memory"
)

func newTestHandler(t *testing.T, opts ...service.Option) http.Handler {
	t.Helper()
	svc := service.New(memory.New(), opts...)
	return New(svc, "").Handler()
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string             `json:"error"`
	Message string             `json:"message"`
	Details types.ErrorDetails `json:"details"`
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := request(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[types.HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestEntityTypes(t *testing.T) {
	h := New(service.New(memory.New(), service.WithRegistry(mapping.NewRegistry("line_item"))), "").Handler()

	rec := request(t, h, http.MethodGet, "/api/entity-types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[types.EntityTypesResponse](t, rec)
	require.Len(t, resp.EntityTypes, len(mapping.BuiltinEntityTypes())+1)
	assert.Equal(t, mapping.EntityOption{Value: "contact", Label: "Contacts"}, resp.EntityTypes[0])
	assert.Equal(t, mapping.EntityOption{Value: "line_item", Label: "Line Items"}, resp.EntityTypes[len(resp.EntityTypes)-1])
}

func TestSourceAndTargetFields(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodGet, "/api/source-fields/contact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	src := decodeBody[types.FieldsResponse](t, rec)
	assert.True(t, src.Fallback)
	assert.Contains(t, src.Fields, mapping.Field{Path: "first_name", Label: "First Name"})

	rec = request(t, h, http.MethodGet, "/api/target-fields/deal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	dst := decodeBody[types.FieldsResponse](t, rec)
	assert.Contains(t, dst.Fields, mapping.Field{Path: "properties.dealname", Label: "Deal Name"})
	assert.Contains(t, rec.Body.String(), `"value":"properties.dealname"`)
}

func TestUnknownEntity(t *testing.T) {
	h := newTestHandler(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/mappings/invoice", ""},
		{http.MethodPost, "/mappings/invoice", `{"a":"b"}`},
		{http.MethodPost, "/test-mapping/invoice", ""},
		{http.MethodGet, "/api/source-fields/invoice", ""},
		{http.MethodPost, "/transform", `{"entity_type":"invoice","data":[]}`},
	} {
		rec := request(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		body := decodeBody[errorBody](t, rec)
		assert.Equal(t, "unknown_entity_type", body.Error, tc.path)
		assert.Contains(t, body.Message, "invoice")
	}
}

func TestGetMapping_DefaultsThenStored(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodGet, "/mappings/deal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[types.RuleSetResponse](t, rec)
	assert.Equal(t, "defaults", got.Source)
	assert.True(t, got.Rules.Equal(mapping.DefaultsFor(mapping.EntityDeal).Flat()))

	rec = request(t, h, http.MethodPost, "/mappings/deal", `{"name":"properties.dealname","amount":"properties.amount"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = request(t, h, http.MethodGet, "/mappings/deal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[types.RuleSetResponse](t, rec)
	assert.Equal(t, "stored", got.Source)
	assert.Equal(t, []string{"name", "amount"}, got.Rules.Keys())
}

func TestSaveMapping(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/mappings/contact", `{"last_name":"properties.lastname","first_name":"properties.firstname"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.SaveResponse](t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, mapping.EntityContact, resp.Entity)
	assert.Equal(t, []string{"last_name", "first_name"}, resp.Rules.Keys(), "rule order is kept")
	assert.Empty(t, resp.Issues)
}

func TestSaveMapping_AcceptsRulesEnvelope(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/mappings/company", `{"rules":{"name":"properties.name"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.SaveResponse](t, rec)
	assert.Equal(t, []string{"name"}, resp.Rules.Keys())
}

func TestSaveMapping_Rejections(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		path string
		body string
		code string
		key  string
	}{
		{"empty body", "/mappings/contact", "", "malformed_input", ""},
		{"nested value", "/mappings/contact", `{"a":{"nested":true}}`, "malformed_input", "a"},
		{"not an object", "/mappings/contact", `["a"]`, "malformed_input", ""},
		{"bad path", "/mappings/contact", `{"first_name":"properties..firstname"}`, "invalid_mapping", "first_name"},
		{"strict duplicate target", "/mappings/contact?strict=true", `{"a":"x","b":"x"}`, "invalid_mapping", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(t, h, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeBody[errorBody](t, rec)
			assert.Equal(t, tt.code, body.Error)
			if tt.key != "" {
				assert.Equal(t, tt.key, body.Details.Key)
				assert.Contains(t, body.Message, tt.key)
			}
		})
	}

	rec := request(t, h, http.MethodGet, "/mappings/contact", "")
	assert.Equal(t, "defaults", decodeBody[types.RuleSetResponse](t, rec).Source, "nothing was saved")
}

func TestSaveMapping_DuplicateTargetFlagged(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/mappings/contact", `{"a":"x","b":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.SaveResponse](t, rec)

	var codes []mapping.IssueCode
	for _, i := range resp.Issues {
		codes = append(codes, i.Code)
	}
	assert.Contains(t, codes, mapping.IssueDuplicateTarget)
}

func TestDeleteMapping(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodDelete, "/mappings/deal", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	request(t, h, http.MethodPost, "/mappings/deal", `{"name":"properties.dealname"}`)
	rec = request(t, h, http.MethodDelete, "/mappings/deal", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = request(t, h, http.MethodGet, "/mappings/deal", "")
	assert.Equal(t, "defaults", decodeBody[types.RuleSetResponse](t, rec).Source)
}

func TestValidateMapping(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/mappings/deal/validate", `{"name":"properties.dealname","nickname":"properties.nope"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.ValidateResponse](t, rec)
	assert.False(t, resp.Valid)
	require.NotEmpty(t, resp.Issues)
	for _, i := range resp.Issues {
		assert.Equal(t, "nickname", i.Key)
	}

	rec = request(t, h, http.MethodGet, "/mappings/deal", "")
	assert.Equal(t, "defaults", decodeBody[types.RuleSetResponse](t, rec).Source, "validate does not save")
}

func TestTestMapping(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/test-mapping/contact", `{"first_name":"properties.firstname","missing_field":"properties.other"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.TestMappingResponse](t, rec)

	assert.True(t, resp.SampleFallback)
	assert.Equal(t, map[string]any{"properties": map[string]any{"firstname": "aymene"}}, resp.SampleOutput)
	assert.Equal(t, []string{"missing_field"}, resp.Unresolved)
	assert.Empty(t, resp.Collisions)
}

func TestTestMapping_CurrentRulesAndCollisions(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/test-mapping/contact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.TestMappingResponse](t, rec)
	assert.True(t, resp.Rules.Equal(mapping.DefaultsFor(mapping.EntityContact).Flat()))
	assert.Equal(t, "1", resp.SampleOutput["hubspot_id"])

	rec = request(t, h, http.MethodPost, "/test-mapping/contact", `{"first_name":"x","last_name":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[types.TestMappingResponse](t, rec)
	assert.Equal(t, "haloui", resp.SampleOutput["x"])
	assert.Equal(t, []string{"x"}, resp.Collisions)
}

func TestTestMapping_LiveSample(t *testing.T) {
	mock := httptest.NewServer(mockapi.New("").Handler())
	defer mock.Close()

	client := crmclient.New(mock.URL, crmclient.WithAPIKey(mockapi.DefaultSourceKey))
	h := newTestHandler(t, service.WithSampleProvider(client), service.WithSourceCatalog(client))

	rec := request(t, h, http.MethodPost, "/test-mapping/project", `{"name":"properties.name"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.TestMappingResponse](t, rec)
	assert.False(t, resp.SampleFallback)
	assert.Equal(t, "proj_1", resp.Sample["id"])

	rec = request(t, h, http.MethodGet, "/api/source-fields/project", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[types.FieldsResponse](t, rec).Fallback)
}

func TestExport(t *testing.T) {
	h := newTestHandler(t)
	request(t, h, http.MethodPost, "/mappings/contact", `{"last_name":"properties.lastname","id":"hubspot_id"}`)

	rec := request(t, h, http.MethodGet, "/mappings/contact/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="contact_mapping.json"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "{\n  \"last_name\": \"properties.lastname\",\n  \"id\": \"hubspot_id\"\n}\n", rec.Body.String())

	rec = request(t, h, http.MethodGet, "/mappings/contact/export?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="contact_mapping.yaml"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "last_name: properties.lastname")

	rec = request(t, h, http.MethodGet, "/mappings/contact/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImport(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/mappings/import", `{"b":"y","a":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.ImportResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"b", "a"}, resp.Rules.Keys())

	req := httptest.NewRequest(http.MethodPost, "/mappings/import", strings.NewReader("first_name: properties.firstname\n"))
	req.Header.Set("Content-Type", "application/yaml")
	yrec := httptest.NewRecorder()
	h.ServeHTTP(yrec, req)
	require.Equal(t, http.StatusOK, yrec.Code, yrec.Body.String())
	assert.Equal(t, []string{"first_name"}, decodeBody[types.ImportResponse](t, yrec).Rules.Keys())

	rec = request(t, h, http.MethodPost, "/mappings/import", `{"a":{"nested":true}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "malformed_input", body.Error)
	assert.Equal(t, "a", body.Details.Key)
}

func TestTransform(t *testing.T) {
	h := newTestHandler(t)

	rec := request(t, h, http.MethodPost, "/transform", `{"entity_type":"contact","data":[{"id":"7","first_name":"Ada","email":"ada@example.com"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["contacts"], 1)
	out := resp["contacts"][0]
	assert.Equal(t, "7", out["hubspot_id"])
	props, ok := out["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", props["firstname"])
	assert.Equal(t, "ada@example.com", props["email"])

	rec = request(t, h, http.MethodPost, "/transform", `{"entity_type":"company","data":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"companies":[]}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New(metrics.NewRegistry())
	h := New(service.New(memory.New()), "", WithMetrics(m)).Handler()

	rec := request(t, h, http.MethodPost, "/transform", `{"entity_type":"contact","data":[{"id":"1"},{"id":"2"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	request(t, h, http.MethodGet, "/mappings/contact", "")

	rec = request(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `fieldmap_records_transformed_total{entity="contact"} 2`)
	assert.Contains(t, out, `fieldmap_unresolved_fields_total{entity="contact"}`)
	assert.Contains(t, out, `fieldmap_http_requests_total{server="api",method="POST",route="POST /transform",status="200"} 1`)
	assert.Contains(t, out, `fieldmap_http_requests_total{server="api",method="GET",route="GET /mappings/{entity}",status="200"} 1`)
}

func TestMetricsEndpoint_DisabledByDefault(t *testing.T) {
	h := newTestHandler(t)
	rec := request(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransform_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		body    string
		message string
	}{
		{"", "No data provided"},
		{`{"data":[]}`, "entity_type is required"},
		{`{bad`, "Invalid JSON in request body"},
	}
	for _, tt := range tests {
		rec := request(t, h, http.MethodPost, "/transform", tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, tt.message, decodeBody[errorBody](t, rec).Message)
	}
}

type brokenStore struct{ memory.Store }

func (b *brokenStore) Load(ctx context.Context, entity mapping.EntityType) (*mapping.RuleSet, error) {
	return nil, &store.StorageError{Op: "load", Entity: entity, Err: errors.New("disk on fire")}
}

func TestStorageErrorIsSanitized(t *testing.T) {
	h := New(service.New(&brokenStore{}), "").Handler()

	rec := request(t, h, http.MethodGet, "/mappings/contact", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "storage_error", body.Error)
	assert.Equal(t, ErrMsgStorage, body.Message)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/mappings/contact", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
