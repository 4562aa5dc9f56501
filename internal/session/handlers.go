package session

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jung602/roro/internal/directions"
	"github.com/jung602/roro/internal/route"
)

func readFormFiles(headers []*multipart.FileHeader) ([][]byte, error) {
	files := make([][]byte, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, data)
	}
	return files, nil
}

func RegisterRoutes(r fiber.Router, store *Store, routes *route.Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		s := store.Create()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": s.ID, "state": s.State()})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		s, ok := store.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		it, resolved := s.Itinerary()
		body := fiber.Map{
			"id":        s.ID,
			"state":     s.State(),
			"locations": s.Locations(),
		}
		if resolved {
			body["duration"] = it.TotalDurationMinutes()
			body["distance"] = it.TotalDistanceKm()
		}
		return c.JSON(body)
	})

	r.Post("/:id/locations", func(c *fiber.Ctx) error {
		s, ok := store.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		var req Location
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		loc, err := s.AddLocation(c.Context(), req)
		switch {
		case errors.Is(err, ErrAlreadyConfirmed):
			return fiber.NewError(fiber.StatusConflict, "session already confirmed")
		case errors.Is(err, directions.ErrDirections):
			// the location is kept; only the itinerary refresh failed
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"location": loc, "resolved": false})
		case err != nil && !errors.Is(err, directions.ErrTooFewWaypoints):
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"location": loc, "state": s.State()})
	})

	r.Post("/:id/reorder", func(c *fiber.Ctx) error {
		s, ok := store.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		var req struct {
			SrcID string `json:"srcId"`
			DstID string `json:"dstId"`
		}
		if err := c.BodyParser(&req); err != nil || req.SrcID == "" || req.DstID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "srcId and dstId required")
		}
		err := s.Reorder(c.Context(), req.SrcID, req.DstID)
		switch {
		case errors.Is(err, ErrLocationNotFound):
			return fiber.NewError(fiber.StatusNotFound, "location not found")
		case errors.Is(err, ErrAlreadyConfirmed):
			return fiber.NewError(fiber.StatusConflict, "session already confirmed")
		case errors.Is(err, directions.ErrDirections):
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"locations": s.Locations(), "resolved": false})
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"locations": s.Locations(), "state": s.State()})
	})

	r.Post("/:id/images", func(c *fiber.Ctx) error {
		s, ok := store.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		index, err := strconv.Atoi(c.FormValue("location"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "location index required")
		}
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		files, err := readFormFiles(form.File["images"])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(files) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "images required")
		}

		err = s.AttachImages(c.Context(), index, files, nil)
		switch {
		case errors.Is(err, ErrTooManyImages):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrLocationNotFound):
			return fiber.NewError(fiber.StatusNotFound, "location not found")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"locations": s.Locations()})
	})

	r.Post("/:id/confirm", authMiddleware, func(c *fiber.Ctx) error {
		s, ok := store.Get(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		var req struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&req); err != nil || req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title required")
		}
		userID, _ := c.Locals("user_id").(string)

		data, err := s.Confirm(req.Title, userID)
		switch {
		case errors.Is(err, ErrNotResolved):
			return fiber.NewError(fiber.StatusConflict, "itinerary not resolved")
		case errors.Is(err, ErrAlreadyConfirmed):
			return fiber.NewError(fiber.StatusConflict, "session already confirmed")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		saved, err := routes.Create(c.Context(), data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		store.Delete(s.ID)
		return c.Status(fiber.StatusCreated).JSON(saved)
	})
}
