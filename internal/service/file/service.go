package file

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/google/uuid"
)

// Photo kinds, used as the first path segment.
const (
	KindClockIn  = "clock-in"
	KindClockOut = "clock-out"
	KindVisit    = "visit"
)

// PhotoStore persists submitted photo payloads verbatim. The content is never
// decoded or inspected.
type PhotoStore interface {
	// SavePhoto stores payload and returns its storage key. An empty payload
	// stores nothing and returns nil.
	SavePhoto(ctx context.Context, employeeID string, date time.Time, kind string, payload *string) (*string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(ctx context.Context, key string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) PhotoStore {
	return &fileServiceImpl{
		storage: storage,
	}
}

func (s *fileServiceImpl) SavePhoto(ctx context.Context, employeeID string, date time.Time, kind string, payload *string) (*string, error) {
	if payload == nil || strings.TrimSpace(*payload) == "" {
		return nil, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate photo id: %w", err)
	}

	key := path.Join(kind, date.Format(time.DateOnly), employeeID, id.String()+".photo")
	stored, err := s.storage.Upload(ctx, strings.NewReader(*payload), key, "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("store %s photo: %w", kind, err)
	}

	return &stored, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string) (string, error) {
	return s.storage.GetURL(ctx, key)
}
