package route

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/jung602/roro/internal/cache"
)

func testApp(t *testing.T, mock pgxmock.PgxPoolIface, userID string) *fiber.App {
	t.Helper()
	app := fiber.New()
	svc := NewService(mock, cache.New(cache.DefaultTTL), nil)
	thumb := func(_ context.Context, _ SavedRoute) (string, error) { return "M 50.00,250.00 L 950.00,250.00", nil }
	authStub := func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
	RegisterRoutes(app.Group("/routes"), svc, thumb, authStub)
	return app
}

func TestRouteHandlers(t *testing.T) {
	mock := newMock(t)
	app := testApp(t, mock, "user-1")

	created := time.Now()
	mock.ExpectQuery(`SELECT id, title, user_id, duration_min, distance_km, path3d, points`).
		WithArgs("r1").
		WillReturnRows(routeRows().AddRow("r1", "Walk", "user-1", 24, 2.0, nil, nil, created, created))
	mock.ExpectQuery(`SELECT id, name, lat, lng, ord, images`).
		WithArgs("r1").
		WillReturnRows(pointRows().AddRow("p1", "Cafe", 37.5, 127.0, 0, nil))
	mock.ExpectQuery(`SELECT id, nickname, COALESCE\(profile_image,''\) FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nickname", "profile_image"}).AddRow("user-1", "jin", ""))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/routes/r1", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get route: %v status=%d", err, resp.StatusCode)
	}
	var got SavedRoute
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "r1" || got.UserNickname != "jin" {
		t.Fatalf("unexpected route %+v", got)
	}

	// thumbnail of the now-cached route
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/routes/r1/thumbnail", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("thumbnail: %v status=%d", err, resp.StatusCode)
	}
	var thumb struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&thumb); err != nil || thumb.Path == "" {
		t.Fatalf("thumbnail body: %v %+v", err, thumb)
	}
}

func TestRouteHandlersForbidden(t *testing.T) {
	mock := newMock(t)
	app := testApp(t, mock, "intruder")

	mock.ExpectQuery(`SELECT user_id FROM routes`).
		WithArgs("r1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("owner"))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/routes/r1", nil))
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v %d", err, resp.StatusCode)
	}
}

func TestRouteHandlersBadRequest(t *testing.T) {
	mock := newMock(t)
	app := testApp(t, mock, "user-1")

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/routes/?page_size=nope", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page_size, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodPost, "/routes/", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty create, got %d", resp.StatusCode)
	}
}
