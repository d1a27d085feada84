package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/handler"
	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/store"
	"github.com/stemsi/classbook-backend/internal/validator"
	"github.com/stemsi/classbook-backend/internal/worker"
)

type noFeed struct{}

func (noFeed) Fetch(context.Context, string) ([]model.FeedEvent, error) { return nil, nil }

type stubSnapshots struct{ saves int }

func (s *stubSnapshots) Status() worker.SnapshotStatus {
	return worker.SnapshotStatus{Adapter: "memory"}
}

func (s *stubSnapshots) SaveNow(context.Context) error {
	s.saves++
	return nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func setup(t *testing.T) (http.Handler, *store.Store, *stubSnapshots) {
	t.Helper()
	validator.Setup()

	n := 0
	st := store.New(nil,
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		store.WithClock(func() time.Time { return time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC) }),
	)
	log := zerolog.Nop()
	seatingSvc := service.NewSeatingService(st, log)
	snaps := &stubSnapshots{}

	h := &Handlers{
		Records:   handler.NewRecords(st),
		Catalog:   handler.NewCatalogHandler(service.NewCatalogService(st, log)),
		Grade:     handler.NewGradeHandler(service.NewGradeService(st, log)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(st, time.UTC)),
		Timetable: handler.NewTimetableHandler(service.NewTimetableService(st, noFeed{}, time.UTC, log)),
		Transfer:  handler.NewTransferHandler(service.NewTransferService(st, log), func() string { return "2025-10-15" }),
		Seating:   handler.NewSeatingHandler(seatingSvc),
		WS:        handler.NewWSHandler(seatingSvc, log, nil),
		System:    handler.NewSystemHandler(snaps, log),
	}
	cfg := &config.Config{GinMode: "test", ImportPerMin: 10, Location: time.UTC}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, h, cfg), st, snaps
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealth(t *testing.T) {
	r, _, _ := setup(t)
	w, _ := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordLifecycle(t *testing.T) {
	r, _, _ := setup(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/classes", map[string]string{"name": "6A", "level": "6e"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Class model.Class `json:"class"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	classID := created.Class.ID

	w, _ = do(t, r, http.MethodPost, "/api/v1/students", map[string]string{
		"lastName": "Martin", "firstName": "Léa", "classId": classID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/students?classId="+classID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Students []model.Student `json:"students"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Students, 1)
	assert.Equal(t, "no-store, private", w.Header().Get("Cache-Control"))

	w, env = do(t, r, http.MethodPut, "/api/v1/classes/"+classID, map[string]string{"name": "6B"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "6B", created.Class.Name)
	assert.Equal(t, "6e", created.Class.Level)

	w, env = do(t, r, http.MethodDelete, "/api/v1/classes/"+classID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DEPENDENCY_EXISTS", env.Error.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/classes/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	r, _, _ := setup(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/classes", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "name")
}

func TestCatalogRoutes(t *testing.T) {
	r, _, _ := setup(t)

	w, _ := do(t, r, http.MethodPost, "/api/v1/catalogs/subjects", map[string]string{"name": "Latin"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/catalogs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPut, "/api/v1/catalogs/periods/x", map[string]string{"name": "T1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := do(t, r, http.MethodPut, "/api/v1/settings/ical-url", map[string]string{"icalUrl": "webcal://example.com/a.ics"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"icalUrl":"https://example.com/a.ics"}`, string(env.Data))

	w, _ = do(t, r, http.MethodPut, "/api/v1/settings/ical-url", map[string]string{"icalUrl": "ftp://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeRoutes(t *testing.T) {
	r, st, _ := setup(t)
	class, err := st.Classes().Create(model.Class{Name: "6A"})
	require.NoError(t, err)
	student, err := st.Students().Create(model.Student{LastName: "Martin", FirstName: "Léa", ClassID: class.ID})
	require.NoError(t, err)
	ev, err := st.Evaluations().Create(model.Evaluation{
		Name: "DS1", Date: "2025-10-01", TargetID: class.ID, Period: "Trimestre 1", Subject: "Mathématiques",
	})
	require.NoError(t, err)

	grade := map[string]string{"studentId": student.ID, "evaluationId": ev.ID, "value": "15"}
	w, _ := do(t, r, http.MethodPut, "/api/v1/grade-entries", grade)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = do(t, r, http.MethodPut, "/api/v1/grade-entries", grade)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/grade-table?targetId="+class.ID+"&period=Trimestre%201&subject=Math%C3%A9matiques", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/v1/grade-table?targetId="+class.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/grade-exports/notes.xlsx?period=Trimestre%201", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="notes-trimestre-1.xlsx"`)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestTimetableRoutes(t *testing.T) {
	r, _, _ := setup(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/timetable/lessons-import",
		`[{"date":"2025-10-13","start":"08:00","end":"09:00","subject":"Maths"}]`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imported":1}`, string(env.Data))

	w, env = do(t, r, http.MethodPost, "/api/v1/timetable/lessons-import", `{"date":"2025-10-13"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IMPORT_FORMAT", env.Error.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/timetable/week?offset=0", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/timetable/week?offset=next", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackupRoutes(t *testing.T) {
	r, st, _ := setup(t)
	_, err := st.Classes().Create(model.Class{Name: "6A"})
	require.NoError(t, err)

	w, _ := do(t, r, http.MethodGet, "/api/v1/data/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sauvegarde-gestion-scolaire-2025-10-15.json")
	exported := w.Body.String()

	w, env := do(t, r, http.MethodPost, "/api/v1/data/import", `{"classes":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"replaced":["classes"]}`, string(env.Data))
	assert.Empty(t, st.Classes().List(nil))

	w, _ = do(t, r, http.MethodPost, "/api/v1/data/import", exported)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, st.Classes().List(nil), 1)

	w, env = do(t, r, http.MethodPost, "/api/v1/data/import", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IMPORT_FORMAT", env.Error.Code)
}

func TestSeatingSessionRoutes(t *testing.T) {
	r, st, _ := setup(t)
	class, err := st.Classes().Create(model.Class{Name: "6A"})
	require.NoError(t, err)
	student, err := st.Students().Create(model.Student{LastName: "Martin", FirstName: "Léa", ClassID: class.ID})
	require.NoError(t, err)
	room, err := st.Rooms().Create(model.Room{Name: "B12", Rows: 2, Cols: 3})
	require.NoError(t, err)
	chart, err := st.SeatingCharts().Create(model.SeatingChart{Name: "Plan", ClassID: class.ID, RoomID: room.ID})
	require.NoError(t, err)

	w, env := do(t, r, http.MethodPost, "/api/v1/seating-sessions", map[string]string{"chartId": chart.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var opened struct {
		Session service.SessionView `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &opened))
	base := "/api/v1/seating-sessions/" + opened.Session.SessionID

	w, env = do(t, r, http.MethodPost, base+"/assign", map[string]string{"studentId": student.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_DESK_SELECTED", env.Error.Code)

	w, env = do(t, r, http.MethodPost, base+"/select", map[string]string{"desk": "5-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DESK_OUT_OF_RANGE", env.Error.Code)

	w, _ = do(t, r, http.MethodPost, base+"/select", map[string]string{"desk": "1-2"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPost, base+"/assign", map[string]string{"studentId": student.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := st.SeatingCharts().Get(chart.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1-2": student.ID}, saved.Arrangement)

	w, _ = do(t, r, http.MethodGet, "/api/v1/seating-charts/"+chart.ID+"/layout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSystemRoutes(t *testing.T) {
	r, _, snaps := setup(t)

	w, _ := do(t, r, http.MethodGet, "/api/v1/system/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/system/save", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, snaps.saves)

	w, _ = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardRoute(t *testing.T) {
	r, _, _ := setup(t)
	w, _ := do(t, r, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
