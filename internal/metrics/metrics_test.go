package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveCountsByResult(t *testing.T) {
	r := New()
	ctx := context.Background()

	r.Observe(ctx, "select_shift", true, 5*time.Millisecond)
	r.Observe(ctx, "select_shift", true, 5*time.Millisecond)
	r.Observe(ctx, "select_shift", false, time.Millisecond)

	body := scrape(t, r)
	assert.Contains(t, body, `milk_delivery_operations_total{operation="select_shift",result="success"} 2`)
	assert.Contains(t, body, `milk_delivery_operations_total{operation="select_shift",result="error"} 1`)
	assert.Contains(t, body, `milk_delivery_operation_duration_seconds_count{operation="select_shift"} 3`)
}

func TestDeliveryMarked(t *testing.T) {
	r := New()
	r.DeliveryMarked("Delivered", "AM")

	assert.Contains(t, scrape(t, r), `milk_delivery_deliveries_marked_total{shift="AM",status="Delivered"} 1`)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := New()
	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/staff/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/staff/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Contains(t, scrape(t, r), `milk_delivery_http_request_duration_seconds_count{method="GET",route="/staff/{id}",status="418"} 2`)
}

func TestShiftSelectedKinds(t *testing.T) {
	r := New()
	r.ShiftSelected("AM", "")
	r.ShiftSelected("PM", "AM")
	r.ShiftSelected("PM", "PM")
	r.AssignmentConflict()

	body := scrape(t, r)
	assert.Contains(t, body, `milk_delivery_shift_selections_total{kind="new",shift="AM"} 1`)
	assert.Contains(t, body, `milk_delivery_shift_selections_total{kind="change",shift="PM"} 1`)
	assert.Contains(t, body, `milk_delivery_shift_selections_total{kind="repeat",shift="PM"} 1`)
	assert.Contains(t, body, `milk_delivery_assignment_conflicts_total 1`)
}
