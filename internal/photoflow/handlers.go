package photoflow

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jung602/roro/internal/places"
)

func RegisterRoutes(r fiber.Router, store *Store) {
	r.Post("/", func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		var images [][]byte
		for _, h := range form.File["photos"] {
			f, err := h.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			images = append(images, data)
		}

		id, b, err := store.Create(images)
		if errors.Is(err, ErrTooFewPhotos) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "photos": photoSummaries(b)})
	})

	r.Get("/:batch/nearby", func(c *fiber.Ctx) error {
		b, ok := store.Get(c.Params("batch"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "batch not found")
		}
		index, err := strconv.Atoi(c.Query("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index required")
		}
		var manual *places.LatLng
		if c.Query("lat") != "" && c.Query("lng") != "" {
			lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
			lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
			if errLat != nil || errLng != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid lat/lng")
			}
			manual = &places.LatLng{Lat: lat, Lng: lng}
		}

		suggestions, err := b.Suggestions(c.Context(), index, manual)
		switch {
		case errors.Is(err, ErrPhotoNotFound):
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		case err != nil:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if suggestions == nil {
			suggestions = []places.Place{}
		}
		return c.JSON(suggestions)
	})

	r.Post("/:batch/assign", func(c *fiber.Ctx) error {
		b, ok := store.Get(c.Params("batch"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "batch not found")
		}
		var req struct {
			Index    int      `json:"index"`
			Location Location `json:"location"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Location.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location name required")
		}
		if err := b.Assign(req.Index, req.Location); errors.Is(err, ErrPhotoNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		}
		return c.JSON(fiber.Map{"photos": photoSummaries(b)})
	})

	r.Post("/:batch/confirm", func(c *fiber.Ctx) error {
		b, ok := store.Get(c.Params("batch"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "batch not found")
		}
		assignments, err := b.Confirm()
		if errors.Is(err, ErrMissingLocation) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		store.Delete(c.Params("batch"))

		out := make([]fiber.Map, len(assignments))
		for i, a := range assignments {
			out[i] = fiber.Map{"photoIndex": a.PhotoIndex, "location": a.Location}
		}
		return c.JSON(fiber.Map{"assignments": out})
	})
}

type photoSummary struct {
	Index    int       `json:"index"`
	HasGPS   bool      `json:"hasGps"`
	Lat      float64   `json:"lat,omitempty"`
	Lng      float64   `json:"lng,omitempty"`
	Location *Location `json:"location,omitempty"`
}

func photoSummaries(b *Batch) []photoSummary {
	photos := b.Photos()
	out := make([]photoSummary, len(photos))
	for i, p := range photos {
		out[i] = photoSummary{Index: i, HasGPS: p.HasGPS, Lat: p.Lat, Lng: p.Lng}
		if loc, ok := b.Location(i); ok {
			out[i].Location = &loc
		}
	}
	return out
}
