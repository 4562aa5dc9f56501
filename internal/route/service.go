package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jung602/roro/internal/cache"
	"github.com/jung602/roro/internal/db"
)

var (
	ErrNotFound     = errors.New("route not found")
	ErrUnauthorized = errors.New("not the route owner")
)

// AnonymousNickname is shown when a route's author has no profile.
const AnonymousNickname = "anonymous"

// Publisher receives route mutation events for the live feed. A nil
// publisher disables broadcasting.
type Publisher interface {
	Publish(ctx context.Context, kind, routeID string)
}

type Service struct {
	db    db.Querier
	cache *cache.Cache
	feed  Publisher
}

func NewService(q db.Querier, c *cache.Cache, feed Publisher) *Service {
	return &Service{db: q, cache: c, feed: feed}
}

// Create persists a confirmed route and its points.
func (s *Service) Create(ctx context.Context, data Data) (SavedRoute, error) {
	id := uuid.NewString()
	path3D, err := json.Marshal(data.Path3D)
	if err != nil {
		return SavedRoute{}, err
	}

	var created time.Time
	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, title, user_id, duration_min, distance_km, path3d)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, id, data.Title, data.UserID, data.Duration, data.Distance, path3D)
	if err := row.Scan(&created); err != nil {
		return SavedRoute{}, err
	}

	if err := s.insertPoints(ctx, id, data.Points); err != nil {
		return SavedRoute{}, err
	}

	// collection listings are stale the moment the insert lands
	s.cache.Invalidate(cache.IsCollectionKey)
	if s.feed != nil {
		s.feed.Publish(ctx, "created", id)
	}

	return SavedRoute{
		ID:       id,
		Title:    data.Title,
		Points:   data.Points,
		Duration: data.Duration,
		Distance: data.Distance,
		Path3D:   data.Path3D,
		UserID:   data.UserID,
		Created:  created,
		Updated:  created,
	}, nil
}

// Update patches a route. Only the owner may mutate; the ownership
// check runs before any write. Cache entries for the route and for all
// collection listings are dropped before Update returns.
func (s *Service) Update(ctx context.Context, id, userID string, patch Data) error {
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return err
	}

	if patch.Title != "" {
		if _, err := s.db.Exec(ctx, `UPDATE routes SET title=$2, updated_at=now() WHERE id=$1`, id, patch.Title); err != nil {
			return err
		}
	}
	if len(patch.Points) > 0 {
		if _, err := s.db.Exec(ctx, `DELETE FROM route_points WHERE route_id=$1`, id); err != nil {
			return err
		}
		if err := s.insertPoints(ctx, id, patch.Points); err != nil {
			return err
		}
		if _, err := s.db.Exec(ctx, `UPDATE routes SET updated_at=now() WHERE id=$1`, id); err != nil {
			return err
		}
	}

	s.cache.Invalidate(cache.RouteMutationMatcher(id))
	if s.feed != nil {
		s.feed.Publish(ctx, "updated", id)
	}
	return nil
}

// Delete removes a route and its points. Owner only.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM route_points WHERE route_id=$1`, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id); err != nil {
		return err
	}

	s.cache.Invalidate(cache.RouteMutationMatcher(id))
	if s.feed != nil {
		s.feed.Publish(ctx, "deleted", id)
	}
	return nil
}

// List returns the newest pageSize routes, served from cache within the
// TTL window.
func (s *Service) List(ctx context.Context, pageSize int) ([]SavedRoute, error) {
	return cache.GetOrFetch(s.cache, cache.RoutesKey(pageSize), func() ([]SavedRoute, error) {
		rows, err := s.db.Query(ctx, `
			SELECT id, title, user_id, duration_min, distance_km, path3d, points, created_at, updated_at
			FROM routes ORDER BY created_at DESC LIMIT $1
		`, pageSize)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var routes []SavedRoute
		for rows.Next() {
			r, err := scanRoute(rows)
			if err != nil {
				return nil, err
			}
			routes = append(routes, r)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		for i := range routes {
			if err := s.hydrate(ctx, &routes[i]); err != nil {
				return nil, err
			}
		}
		return routes, nil
	})
}

// Get returns one route by id, cache-backed.
func (s *Service) Get(ctx context.Context, id string) (SavedRoute, error) {
	return cache.GetOrFetch(s.cache, cache.RouteKey(id), func() (SavedRoute, error) {
		row := s.db.QueryRow(ctx, `
			SELECT id, title, user_id, duration_min, distance_km, path3d, points, created_at, updated_at
			FROM routes WHERE id=$1
		`, id)
		r, err := scanRoute(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedRoute{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return SavedRoute{}, err
		}
		if err := s.hydrate(ctx, &r); err != nil {
			return SavedRoute{}, err
		}
		return r, nil
	})
}

func (s *Service) checkOwner(ctx context.Context, id, userID string) error {
	var owner string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM routes WHERE id=$1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) insertPoints(ctx context.Context, routeID string, points []Point) error {
	for _, p := range points {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return err
		}
		pointID := p.ID
		if pointID == "" {
			pointID = uuid.NewString()
		}
		_, err = s.db.Exec(ctx, `
			INSERT INTO route_points (id, route_id, name, lat, lng, ord, images)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, pointID, routeID, p.Name, p.Lat, p.Lng, p.Order, images)
		if err != nil {
			return err
		}
	}
	return nil
}

// hydrate loads a route's points and its author profile. Profiles are
// cached per user so one listing hits the users table at most once per
// author within the TTL window.
func (s *Service) hydrate(ctx context.Context, r *SavedRoute) error {
	if len(r.Points) == 0 {
		points, err := s.loadPoints(ctx, r.ID)
		if err != nil {
			return err
		}
		r.Points = points
	}
	sortPoints(r.Points)

	if r.UserID == "" {
		r.UserNickname = AnonymousNickname
		return nil
	}
	profile, err := s.userProfile(ctx, r.UserID)
	if err != nil {
		return err
	}
	r.UserNickname = profile.Nickname
	r.UserProfileImage = profile.ProfileImage
	return nil
}

func (s *Service) loadPoints(ctx context.Context, routeID string) ([]Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, lat, lng, ord, images
		FROM route_points WHERE route_id=$1 ORDER BY ord
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		var images []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lng, &p.Order, &images); err != nil {
			return nil, err
		}
		if len(images) > 0 {
			if err := json.Unmarshal(images, &p.Images); err != nil {
				return nil, err
			}
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Service) userProfile(ctx context.Context, userID string) (Profile, error) {
	return cache.GetOrFetch(s.cache, cache.UserKey(userID), func() (Profile, error) {
		var p Profile
		err := s.db.QueryRow(ctx, `
			SELECT id, nickname, COALESCE(profile_image,'') FROM users WHERE id=$1
		`, userID).Scan(&p.ID, &p.Nickname, &p.ProfileImage)
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{ID: userID, Nickname: AnonymousNickname}, nil
		}
		if err != nil {
			return Profile{}, err
		}
		return p, nil
	})
}

// scanRoute reads one routes row. The points column holds the legacy
// embedded-array shape; newer routes keep points in route_points and
// leave it null. Both shapes must read back identically.
func scanRoute(row pgx.Row) (SavedRoute, error) {
	var r SavedRoute
	var path3D, embedded []byte
	err := row.Scan(&r.ID, &r.Title, &r.UserID, &r.Duration, &r.Distance, &path3D, &embedded, &r.Created, &r.Updated)
	if err != nil {
		return SavedRoute{}, err
	}
	if len(path3D) > 0 {
		if err := json.Unmarshal(path3D, &r.Path3D); err != nil {
			return SavedRoute{}, err
		}
	}
	if len(embedded) > 0 {
		if err := json.Unmarshal(embedded, &r.Points); err != nil {
			return SavedRoute{}, err
		}
	}
	return r, nil
}

// sortPoints orders by the explicit order field. Early documents had no
// such field and used the point name as a one-based index, so equal
// orders fall back to numeric-name comparison.
func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Order != points[j].Order {
			return points[i].Order < points[j].Order
		}
		ni, errI := strconv.Atoi(points[i].Name)
		nj, errJ := strconv.Atoi(points[j].Name)
		if errI != nil || errJ != nil {
			return false
		}
		return ni < nj
	})
}
