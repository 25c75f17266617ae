package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/internal/document"
	"github.com/talqs/talqs/backend/go-services/internal/document/repository"
)

var (
	ErrNotFound = repository.ErrEmpty
)

// Service defines the document operations used by the handler layer.
type Service interface {
	Put(ctx context.Context, slot, content, filename string) (*document.Document, error)
	Get(ctx context.Context, slot string) (*document.Document, error)
	// CheckFilename rejects names without an accepted extension.
	CheckFilename(filename string) error
}

// Store is the slot storage behind the service.
type Store interface {
	Put(ctx context.Context, slot string, doc *document.Document) error
	Get(ctx context.Context, slot string) (*document.Document, error)
}

// NewService returns a Service over store accepting the given file extensions.
func NewService(store Store, allowedExtensions []string) Service {
	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, e := range allowedExtensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	return &docService{store: store, exts: exts, now: time.Now}
}

// NewMemoryService returns a Service backed by a bounded in-memory repository.
func NewMemoryService(maxSlots int, ttl time.Duration, allowedExtensions []string) (Service, *repository.MemoryRepo) {
	repo := repository.NewMemoryRepo(maxSlots, ttl)
	return NewService(repo, allowedExtensions), repo
}

type docService struct {
	store Store
	exts  map[string]struct{}
	now   func() time.Time
}

func (s *docService) Put(ctx context.Context, slot, content, filename string) (*document.Document, error) {
	if err := s.CheckFilename(filename); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("File is empty")
	}
	d := &document.Document{Content: content, Filename: filename, UploadedAt: s.now().UTC()}
	if err := s.store.Put(ctx, slot, d); err != nil {
		return nil, apperrors.Internal(err, "store document")
	}
	return d, nil
}

func (s *docService) Get(ctx context.Context, slot string) (*document.Document, error) {
	d, err := s.store.Get(ctx, slot)
	if err != nil {
		if errors.Is(err, repository.ErrEmpty) {
			return nil, ErrNotFound
		}
		return nil, apperrors.Internal(err, "load document")
	}
	return d, nil
}

func (s *docService) CheckFilename(filename string) error {
	if filename == "" {
		return apperrors.Validation("No selected file")
	}
	if _, ok := s.exts[strings.ToLower(filepath.Ext(filename))]; !ok {
		return apperrors.Validation("Only .txt files are supported")
	}
	return nil
}
