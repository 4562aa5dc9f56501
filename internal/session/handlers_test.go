package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/jung602/roro/internal/cache"
	"github.com/jung602/roro/internal/route"
)

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestSessionHandlersEndToEnd(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	store := NewStore(&scriptedProvider{}, &countingUploader{})
	routes := route.NewService(mock, cache.New(cache.DefaultTTL), nil)
	authStub := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/sessions"), store, routes, authStub)

	resp := postJSON(t, app, "/sessions/", fiber.Map{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status=%d", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ID == "" {
		t.Fatalf("decode session: %v %+v", err, created)
	}
	base := "/sessions/" + created.ID

	for _, loc := range []Location{
		{Name: "Cafe", Lat: 37.50, Lng: 127.00, Resolved: true},
		{Name: "Park", Lat: 37.51, Lng: 127.01, Resolved: true},
		{Name: "Station", Lat: 37.52, Lng: 127.02, Resolved: true},
	} {
		resp = postJSON(t, app, base+"/locations", loc)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("add %s: status=%d", loc.Name, resp.StatusCode)
		}
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, base, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get session: %v status=%d", err, resp.StatusCode)
	}
	var state struct {
		State     string     `json:"state"`
		Locations []Location `json:"locations"`
		Duration  int        `json:"duration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.State != string(StateResolved) || len(state.Locations) != 3 || state.Duration == 0 {
		t.Fatalf("unexpected state %+v", state)
	}

	resp = postJSON(t, app, base+"/reorder", fiber.Map{
		"srcId": state.Locations[0].ID,
		"dstId": state.Locations[1].ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder: status=%d", resp.StatusCode)
	}

	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(pgxmock.AnyArg(), "Morning walk", "user-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`INSERT INTO route_points`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	resp = postJSON(t, app, base+"/confirm", fiber.Map{"title": "Morning walk"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("confirm: status=%d", resp.StatusCode)
	}
	var saved route.SavedRoute
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode saved: %v", err)
	}
	if saved.Title != "Morning walk" || len(saved.Points) != 3 {
		t.Fatalf("unexpected saved route %+v", saved)
	}
	// the session is consumed on confirm
	if _, ok := store.Get(created.ID); ok {
		t.Fatalf("confirmed session must be removed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionHandlersNotFound(t *testing.T) {
	app := fiber.New()
	store := NewStore(&scriptedProvider{}, &countingUploader{})
	RegisterRoutes(app.Group("/sessions"), store, nil, func(c *fiber.Ctx) error { return c.Next() })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sessions/ghost", nil))
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v %d", err, resp.StatusCode)
	}
}
