package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biotrack/biotrack-cli/internal/extract"
	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/plan"
	"github.com/biotrack/biotrack-cli/internal/store"
	anthropicpkg "github.com/biotrack/biotrack-cli/pkg/anthropic"
)

func newTestAPIServer(t *testing.T) (*apiServer, *anthropicpkg.MockClient) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(t.Context()))

	mc := new(anthropicpkg.MockClient)
	api := &apiServer{
		store:    st,
		analyzer: extract.NewAnalyzer(mc, extract.Opts{}),
		runner:   plan.NewRunner(st, plan.NewGenerator(mc, ""), time.Minute),
		profile:  model.Profile{UserID: "user-1", Weight: 80, Height: 180, Age: 30, Gender: "male"},
		userID:   "user-1",
		language: "en",
	}
	return api, mc
}

func textResponse(s string) *anthropicpkg.MessageResponse {
	return &anthropicpkg.MessageResponse{
		Content: []anthropicpkg.ContentBlock{{Type: "text", Text: s}},
	}
}

func seedResult(t *testing.T, api *apiServer, metricID string, value float64, status model.MetricStatus, day int) model.TestResult {
	t.Helper()
	r := model.TestResult{
		UserID:   api.userID,
		MetricID: metricID,
		Value:    &value,
		Status:   status,
		TestDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, api.store.CreateTestResult(t.Context(), &r))
	return r
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestServe_Health(t *testing.T) {
	api, _ := newTestAPIServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServe_Analyze_NoFiles(t *testing.T) {
	api, _ := newTestAPIServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least one file is required")
}

func TestServe_Analyze_UnsupportedType(t *testing.T) {
	api, _ := newTestAPIServer(t)

	body, contentType := multipartUpload(t, "report.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unsupported file type")
}

func TestServe_Analyze_StoresResults(t *testing.T) {
	api, mc := newTestAPIServer(t)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`[{"metricName":"Vitamin D","value":12,"unit":"ng/mL","testDate":"2024-01-10"}]`), nil)

	body, contentType := multipartUpload(t, "report.pdf", []byte("%PDF-fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Documents int                `json:"documents"`
		Results   []model.TestResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Documents)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "vitamin-d", resp.Results[0].MetricID)
	assert.Equal(t, model.StatusLow, resp.Results[0].Status)

	stored, err := api.store.ListTestResults(t.Context(), api.userID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestServe_Analyze_UnreadableDocument(t *testing.T) {
	api, mc := newTestAPIServer(t)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("UNREADABLE_DOCUMENT"), nil)

	body, contentType := multipartUpload(t, "blurry.jpg", []byte("not-a-photo"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestServe_ListTests(t *testing.T) {
	api, _ := newTestAPIServer(t)
	seedResult(t, api, "glucose", 92, model.StatusNormal, 5)
	seedResult(t, api, "vitamin-d", 12, model.StatusLow, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/tests", nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var results []model.TestResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Len(t, results, 2)

	// Metric filter narrows the listing.
	req = httptest.NewRequest(http.MethodGet, "/api/tests?metric=glucose", nil)
	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "glucose", results[0].MetricID)
}

func TestServe_DeleteTest(t *testing.T) {
	api, _ := newTestAPIServer(t)
	r := seedResult(t, api, "glucose", 92, model.StatusNormal, 5)

	req := httptest.NewRequest(http.MethodDelete, "/api/tests/"+r.ID, nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/tests/"+r.ID, nil)
	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServe_Compare(t *testing.T) {
	api, _ := newTestAPIServer(t)
	seedResult(t, api, "vitamin-d", 12, model.StatusLow, 1)
	seedResult(t, api, "vitamin-d", 45, model.StatusNormal, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var comparisons []model.ComparisonResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comparisons))
	require.Len(t, comparisons, 1)
	assert.Equal(t, model.ChangeImproved, comparisons[0].Change)
}

func TestServe_Analyze_SchedulesRecheckReminder(t *testing.T) {
	api, mc := newTestAPIServer(t)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`[{"metricName":"Vitamin D","value":12,"unit":"ng/mL","testDate":"2024-01-10"}]`), nil)

	body, contentType := multipartUpload(t, "report.pdf", []byte("%PDF-fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Vitamin D carries a 3-month recheck interval, so storing the result
	// schedules an unsent reminder counted from the test date.
	reminders, err := api.store.ListReminders(t.Context(), api.userID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "vitamin-d", reminders[0].MetricID)
	assert.False(t, reminders[0].Sent)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), reminders[0].DueDate.UTC())
}

func seedReminder(t *testing.T, api *apiServer, metricID string, due time.Time) model.Reminder {
	t.Helper()
	r := model.Reminder{
		UserID:   api.userID,
		MetricID: metricID,
		DueDate:  due,
	}
	require.NoError(t, api.store.UpsertReminder(t.Context(), &r))
	return r
}

func TestServe_ListReminders(t *testing.T) {
	api, _ := newTestAPIServer(t)
	seedReminder(t, api, "vitamin-d", time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	seedReminder(t, api, "glucose", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/reminders", nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var reminders []model.Reminder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reminders))
	require.Len(t, reminders, 2)
	assert.Equal(t, "glucose", reminders[0].MetricID, "earliest due date first")
}

func TestServe_UpdateReminder(t *testing.T) {
	api, _ := newTestAPIServer(t)
	r := seedReminder(t, api, "vitamin-d", time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodPatch, "/api/reminders/"+r.ID,
		bytes.NewReader([]byte(`{"sent":true}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	reminders, err := api.store.ListReminders(t.Context(), api.userID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].Sent)
	assert.NotNil(t, reminders[0].SentAt)

	req = httptest.NewRequest(http.MethodPatch, "/api/reminders/missing",
		bytes.NewReader([]byte(`{"sent":true}`)))
	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServe_DeleteReminder(t *testing.T) {
	api, _ := newTestAPIServer(t)
	r := seedReminder(t, api, "vitamin-d", time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodDelete, "/api/reminders/"+r.ID, nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/reminders/"+r.ID, nil)
	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShutdownServer_DrainsCleanly(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()

	shutdownServer(srv)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}

const minimalPlanJSON = `{
	"summary": "Balanced plan",
	"goalDescription": "Maintain current weight",
	"deficiencies": [],
	"mealPlan": {"breakfast": [], "lunch": [], "dinner": [], "snacks": []},
	"tips": [],
	"warnings": [],
	"conditionTips": []
}`

func TestServe_DietPlanLifecycle(t *testing.T) {
	api, mc := newTestAPIServer(t)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(minimalPlanJSON), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/diet-plan", bytes.NewReader([]byte(`{"language":"en"}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var started map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &started))
	jobID := started["job_id"]
	require.NotEmpty(t, jobID)

	// The background worker lands the job; poll until completed.
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/diet-plan/job/"+jobID, nil)
		rr := httptest.NewRecorder()
		api.routes().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			return false
		}
		var status model.JobStatus
		if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == model.JobStateCompleted && len(status.Plan) > 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestServe_JobStatus_NotFound(t *testing.T) {
	api, _ := newTestAPIServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/diet-plan/job/missing", nil)
	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
