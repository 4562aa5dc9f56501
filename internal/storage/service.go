package storage

import (
	"context"
	"strings"

	"github.com/jung602/roro/internal/db"

	"github.com/google/uuid"
)

// ObjectStore is the external binary-storage collaborator.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (url, path string, err error)
	Delete(ctx context.Context, path string) error
}

// Service records uploaded objects and issues their public URLs. The
// bytes themselves live behind the CDN base URL; this service owns the
// metadata rows.
type Service struct {
	db      db.Querier
	baseURL string
}

func NewService(q db.Querier, baseURL string) *Service {
	return &Service{db: q, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Service) Put(ctx context.Context, key string, data []byte) (string, string, error) {
	id := uuid.NewString()
	path := key
	url := s.baseURL + "/" + path
	_, err := s.db.Exec(ctx, `
		INSERT INTO storage_objects (id, path, url, size_bytes)
		VALUES ($1,$2,$3,$4)
	`, id, path, url, len(data))
	if err != nil {
		return "", "", err
	}
	return url, path, nil
}

func (s *Service) Delete(ctx context.Context, path string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM storage_objects WHERE path=$1`, path)
	return err
}
