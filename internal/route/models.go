package route

import (
	"time"

	"github.com/jung602/roro/internal/shared/geo"
)

// Image is one photo attached to a route point.
type Image struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Point is a resolved, persisted waypoint. Ordering is significant and
// survives persistence round trips via the Order column.
type Point struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Order  int     `json:"order"`
	Images []Image `json:"images,omitempty"`
}

// SavedRoute is a persisted walking route as served to the feed.
type SavedRoute struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Points           []Point    `json:"points"`
	Duration         int        `json:"duration"` // minutes
	Distance         float64    `json:"distance"` // km
	Path3D           []geo.Vec3 `json:"path3d,omitempty"`
	UserID           string     `json:"userId"`
	UserNickname     string     `json:"userNickname"`
	UserProfileImage string     `json:"userProfileImage,omitempty"`
	Created          time.Time  `json:"created"`
	Updated          time.Time  `json:"updated"`
}

// Data is the shape a confirmed editing session hands to persistence.
type Data struct {
	Title    string
	Points   []Point
	Duration int
	Distance float64
	Path3D   []geo.Vec3
	UserID   string
}

// Profile is the author information hydrated onto routes.
type Profile struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage,omitempty"`
}
