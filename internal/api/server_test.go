package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-rural/internal/logger"
	"agenda-rural/internal/repository"
	"agenda-rural/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := logger.Discard()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	store := repository.NewLocalStore(db, log)
	t.Cleanup(func() { _ = store.Close() })

	agendaSvc := service.NewAgendaService(store, log, time.UTC)
	require.NoError(t, agendaSvc.Load(testContext(t)))

	return NewServer(Deps{
		Agenda:  agendaSvc,
		Journal: service.NewJournalService(store, log),
		Advice:  service.NewAdviceService(nil, nil, log),
		Catalog: service.NewCatalogService(),
	}, log)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createTask(t *testing.T, s *Server, body map[string]any) map[string]any {
	t.Helper()
	resp, data := doJSON(t, s, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var task map[string]any
	require.NoError(t, json.Unmarshal(data, &task))
	return task
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	resp, data := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "local", health.Store)
	assert.Equal(t, 0, health.Tasks)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_TaskLifecycle(t *testing.T) {
	s := newTestServer(t)

	task := createTask(t, s, map[string]any{
		"title": "Consertar porteira", "category": "maintenance", "urgency": "high",
		"recurrence": "none", "specificDate": "2024-06-15",
	})
	id := task["id"].(string)
	assert.Equal(t, "2024-06-15", task["specificDate"])
	assert.Equal(t, false, task["isCompleted"])

	resp, data := doJSON(t, s, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Consertar porteira")

	resp, data = doJSON(t, s, http.MethodPost, "/api/v1/tasks/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"isCompleted":true`)

	resp, _ = doJSON(t, s, http.MethodDelete, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = doJSON(t, s, http.MethodGet, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	assert.Equal(t, "not_found", errResp.Error)
}

func TestServer_CreateTaskValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"both anchors", map[string]any{"title": "x", "category": "general", "recurrence": "none", "specificDate": "2024-01-01", "monthReference": 0}},
		{"no anchor", map[string]any{"title": "x", "category": "general", "recurrence": "none"}},
		{"bad category", map[string]any{"title": "x", "category": "pets", "recurrence": "none", "monthReference": 3}},
		{"empty title", map[string]any{"title": " ", "category": "general", "recurrence": "none", "monthReference": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doJSON(t, s, http.MethodPost, "/api/v1/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))
			assert.Contains(t, string(data), "validation_error")
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ListFiltersAndOrdering(t *testing.T) {
	s := newTestServer(t)

	done := createTask(t, s, map[string]any{"title": "A", "category": "animals", "recurrence": "none", "specificDate": "2024-06-01"})
	createTask(t, s, map[string]any{"title": "B", "category": "planting", "recurrence": "yearly", "monthReference": 8})
	doJSON(t, s, http.MethodPost, "/api/v1/tasks/"+done["id"].(string)+"/toggle", nil)

	resp, data := doJSON(t, s, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Tasks []map[string]any `json:"tasks"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "B", list.Tasks[0]["title"], "pending first")

	_, data = doJSON(t, s, http.MethodGet, "/api/v1/tasks?category=animals", nil)
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, 1, list.Total)

	resp, _ = doJSON(t, s, http.MethodGet, "/api/v1/tasks?urgency=urgent", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CalendarAndDashboard(t *testing.T) {
	s := newTestServer(t)

	createTask(t, s, map[string]any{"title": "Vermifugar", "category": "animals", "recurrence": "monthly", "specificDate": "2024-01-20"})
	createTask(t, s, map[string]any{"title": "Plantar abóbora", "category": "planting", "recurrence": "none", "monthReference": 2})

	resp, data := doJSON(t, s, http.MethodGet, "/api/v1/calendar/2024/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var grid struct {
		MonthName     string           `json:"monthName"`
		LeadingBlanks int              `json:"leadingBlanks"`
		Days          []map[string]any `json:"days"`
		Seasonal      []map[string]any `json:"seasonal"`
	}
	require.NoError(t, json.Unmarshal(data, &grid))
	assert.Equal(t, "Março", grid.MonthName)
	assert.Equal(t, 5, grid.LeadingBlanks, "March 1st 2024 is a Friday")
	assert.Len(t, grid.Days, 31)
	assert.Len(t, grid.Seasonal, 1)
	assert.Equal(t, true, grid.Days[19]["hasPending"])

	resp, data = doJSON(t, s, http.MethodGet, "/api/v1/calendar/2024/3/20", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Vermifugar")

	resp, _ = doJSON(t, s, http.MethodGet, "/api/v1/calendar/2024/2/30", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, s, http.MethodGet, "/api/v1/calendar/2024/13", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = doJSON(t, s, http.MethodGet, "/api/v1/dashboard?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash struct {
		Preview []map[string]any `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(data, &dash))
	assert.Len(t, dash.Preview, 2)
}

func TestServer_LogsAndAssistant(t *testing.T) {
	s := newTestServer(t)

	resp, data := doJSON(t, s, http.MethodPost, "/api/v1/logs", map[string]any{"content": "Choveu 30mm", "log_date": "2024-06-14"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	resp, _ = doJSON(t, s, http.MethodPost, "/api/v1/logs", map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, s, http.MethodPost, "/api/v1/logs", map[string]any{"content": "x", "log_date": "14/06/2024"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = doJSON(t, s, http.MethodGet, "/api/v1/logs?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"log_date":"2024-06-14"`)

	resp, data = doJSON(t, s, http.MethodPost, "/api/v1/assistant", AskRequest{Query: "Quando colher café?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var answer AskResponse
	require.NoError(t, json.Unmarshal(data, &answer))
	assert.Equal(t, service.AdviceMissingKeyMessage, answer.Answer)
}

func TestServer_Metrics(t *testing.T) {
	for i := 0; i < 3; i++ {
		s := newTestServer(t)
		createTask(t, s, map[string]any{
			"title": "Roçar pasto", "category": "pasture", "recurrence": "none", "specificDate": "2024-07-01",
		})
		doJSON(t, s, http.MethodGet, "/api/v1/tasks", nil)
		doJSON(t, s, http.MethodDelete, "/api/v1/tasks/missing", nil)
		doJSON(t, s, http.MethodGet, "/api/v1/catalog", nil)
	}

	_, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	resp, data := doJSON(t, newTestServer(t), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(data)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/v1/catalog",status="200"}`)
	assert.Regexp(t, `http_requests_total\{method="POST",route="/api/v1/tasks/?",status="201"\}`, body)
	assert.Contains(t, body, `http_requests_total{method="DELETE",route="/api/v1/tasks/:id",status="404"}`)
}

func TestServer_MetricsUseRenderedStatus(t *testing.T) {
	s := newTestServer(t)
	notFound := requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/tasks/:id", "404")
	serverError := requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/tasks/:id", "500")
	before404 := testutil.ToFloat64(notFound)
	before500 := testutil.ToFloat64(serverError)

	resp, _ := doJSON(t, s, http.MethodGet, "/api/v1/tasks/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	badRequest := requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/calendar/:year/:month", "400")
	before400 := testutil.ToFloat64(badRequest)
	resp, _ = doJSON(t, s, http.MethodGet, "/api/v1/calendar/2024/13", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, before404+1, testutil.ToFloat64(notFound))
	assert.Equal(t, before500, testutil.ToFloat64(serverError))
	assert.Equal(t, before400+1, testutil.ToFloat64(badRequest))
}
