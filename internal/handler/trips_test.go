package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/models"
	"github.com/fleetguard360/busbooking/internal/session"
	"github.com/fleetguard360/busbooking/internal/trips"
)

type fakeExecutor struct {
	data json.RawMessage
	err  error
}

func (f *fakeExecutor) Execute(ctx context.Context, op graphql.Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error) {
	return f.data, f.err
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSearchReturnsClassifiedFirstPage(t *testing.T) {
	exec := &fakeExecutor{data: json.RawMessage(`{"buscarViajes":[
		{"id":"V2","origen":"Bogotá","destino":"Medellín","fecha":"2025-11-10","horaSalida":"14:00","horaLlegada":"22:00","cuposTotales":40,"cuposDisponibles":0,"estado":"Programado"},
		{"id":"V1","origen":"Bogotá","destino":"Medellín","fecha":"2025-11-10","horaSalida":"06:00","horaLlegada":"14:00","cuposTotales":40,"cuposDisponibles":35,"estado":"Programado"}
	]}`)}
	h := NewTripsHandler(trips.NewController(exec))
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/trips/search", `{"origin":"Bogotá","destination":"Medellín","date":"2025-11-10"}`)
	if err := h.Search(c); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp tripsPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(resp.Trips))
	}
	if resp.Trips[0].ID != "V1" || resp.Trips[1].ID != "V2" {
		t.Errorf("trips not sorted by departure: %s, %s", resp.Trips[0].ID, resp.Trips[1].ID)
	}
	if resp.Trips[0].Availability != trips.Available || !resp.Trips[0].CanReserve {
		t.Errorf("V1 classification = %q/%v", resp.Trips[0].Availability, resp.Trips[0].CanReserve)
	}
	if resp.Trips[1].Availability != trips.SoldOut || resp.Trips[1].CanReserve {
		t.Errorf("V2 classification = %q/%v", resp.Trips[1].Availability, resp.Trips[1].CanReserve)
	}
	if resp.Metadata.Page != 1 || resp.Metadata.PageSize != trips.PageSize {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

func TestSearchValidationFlagsFields(t *testing.T) {
	h := NewTripsHandler(trips.NewController(&fakeExecutor{}))
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/trips/search", `{"origin":"Cali","destination":"Cali","date":"2025-11-10"}`)
	if err := h.Search(c); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error != "validation_error" {
		t.Errorf("error = %q, want validation_error", resp.Error)
	}
	if _, ok := resp.Fields["origin"]; !ok {
		t.Error("origin not flagged")
	}
	if _, ok := resp.Fields["destination"]; !ok {
		t.Error("destination not flagged")
	}
}

func TestSearchBackendFailure(t *testing.T) {
	exec := &fakeExecutor{err: &graphql.QueryError{Operation: "buscarViajes", Message: "backend down"}}
	h := NewTripsHandler(trips.NewController(exec))
	e := echo.New()

	c, rec := postJSON(e, "/api/v1/trips/search", `{"origin":"Bogotá","destination":"Medellín","date":"2025-11-10"}`)
	if err := h.Search(c); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(resp.Message, "backend down") {
		t.Errorf("message = %q, want backend message", resp.Message)
	}
}
