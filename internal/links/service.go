// Package links implements owner-scoped create, read, list, update and
// soft-delete of short links.
package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/metrics"
	"github.com/joestump/linkhub/internal/store"
	"github.com/joestump/linkhub/internal/validate"
)

var (
	// ErrLinkExists means an active link already uses the name or slug.
	ErrLinkExists = errors.New("link with the name or slug provided already exists")
	// ErrNotFound means no link (or no active link, for get and update) has the id.
	ErrNotFound = errors.New("link not found")
	// ErrForbidden means the link exists but belongs to another account.
	ErrForbidden = errors.New("link owned by another account")
	// ErrInvalidID means the link id is not a UUID.
	ErrInvalidID = errors.New("invalid link id")
)

// Default page bounds for List.
const (
	DefaultOffset = 0
	DefaultLimit  = 10
)

// CreateInput is the body of a create request.
type CreateInput struct {
	Name       string `json:"name" validate:"min=4,max=20"`
	Slug       string `json:"slug" validate:"min=5,max=20"`
	RedirectTo string `json:"redirect_to" validate:"url"`
}

// UpdateInput is the body of an update request. Nil fields are left alone.
type UpdateInput struct {
	Name       *string `json:"name" validate:"omitempty,min=4,max=20"`
	Slug       *string `json:"slug" validate:"omitempty,min=5,max=20"`
	RedirectTo *string `json:"redirect_to" validate:"omitempty,url"`
}

// ListOptions selects a page of links. A zero Limit means DefaultLimit.
type ListOptions struct {
	Offset int
	Limit  int
}

// Link is the public view of a link.
type Link struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	RedirectTo string     `json:"redirect_to"`
	OwnerID    string     `json:"owner_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func viewOf(l *store.Link) *Link {
	v := &Link{
		ID:         l.ID,
		Name:       l.Name,
		Slug:       l.Slug,
		RedirectTo: l.RedirectTo,
		OwnerID:    l.OwnerID,
		CreatedAt:  l.CreatedAt,
	}
	if l.UpdatedAt.Valid {
		t := l.UpdatedAt.Time
		v.UpdatedAt = &t
	}
	return v
}

// Service enforces ownership and uniqueness over the link store. Every
// method takes the authenticated caller's account id as ownerID.
type Service struct {
	links *store.LinkStore
	log   *zap.Logger
	now   func() time.Time
}

func NewService(links *store.LinkStore, log *zap.Logger) *Service {
	return &Service{links: links, log: log, now: time.Now}
}

// Create stores a new link owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Link, error) {
	in.Slug = NormalizeSlug(in.Slug)
	if err := validate.Struct(in); err != nil {
		return nil, record("create", err)
	}

	if _, err := s.links.FindActiveByNameOrSlug(ctx, in.Name, in.Slug); err == nil {
		return nil, record("create", ErrLinkExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, record("create", fmt.Errorf("check existing link: %w", err))
	}

	l, err := s.links.Create(ctx, in.Name, in.Slug, in.RedirectTo, ownerID, s.now())
	if errors.Is(err, store.ErrDuplicate) {
		return nil, record("create", ErrLinkExists)
	}
	if err != nil {
		return nil, record("create", fmt.Errorf("create link: %w", err))
	}
	return viewOf(l), record("create", nil)
}

// Get returns an active link owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, linkID string) (*Link, error) {
	l, err := s.ownedActive(ctx, ownerID, linkID)
	if err != nil {
		return nil, record("get", err)
	}
	return viewOf(l), record("get", nil)
}

// List returns a page of ownerID's active links, newest first.
func (s *Service) List(ctx context.Context, ownerID string, opts ListOptions) ([]*Link, error) {
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	rows, err := s.links.ListActiveByOwner(ctx, ownerID, opts.Offset, opts.Limit)
	if err != nil {
		return nil, record("list", fmt.Errorf("list links: %w", err))
	}
	out := make([]*Link, 0, len(rows))
	for _, l := range rows {
		out = append(out, viewOf(l))
	}
	return out, record("list", nil)
}

// Update applies the non-nil fields of in to an active link owned by ownerID.
func (s *Service) Update(ctx context.Context, ownerID, linkID string, in UpdateInput) (*Link, error) {
	if in.Slug != nil {
		slug := NormalizeSlug(*in.Slug)
		in.Slug = &slug
	}
	if err := validate.Struct(in); err != nil {
		return nil, record("update", err)
	}

	l, err := s.ownedActive(ctx, ownerID, linkID)
	if err != nil {
		return nil, record("update", err)
	}

	// Only changed values can collide with another link; an empty probe
	// never matches since stored names and slugs are non-empty.
	var probeName, probeSlug string
	if in.Name != nil && *in.Name != l.Name {
		probeName = *in.Name
	}
	if in.Slug != nil && *in.Slug != l.Slug {
		probeSlug = *in.Slug
	}
	if probeName != "" || probeSlug != "" {
		other, err := s.links.FindActiveByNameOrSlug(ctx, probeName, probeSlug)
		switch {
		case err == nil && other.ID != l.ID:
			return nil, record("update", ErrLinkExists)
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, record("update", fmt.Errorf("check existing link: %w", err))
		}
	}

	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.Slug != nil {
		l.Slug = *in.Slug
	}
	if in.RedirectTo != nil {
		l.RedirectTo = *in.RedirectTo
	}
	l.UpdatedAt = sql.NullTime{Time: s.now().UTC(), Valid: true}

	updated, err := s.links.Update(ctx, l)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, record("update", ErrLinkExists)
	case errors.Is(err, store.ErrNotFound):
		return nil, record("update", ErrNotFound)
	case err != nil:
		return nil, record("update", fmt.Errorf("update link: %w", err))
	}
	return viewOf(updated), record("update", nil)
}

// Delete soft-deletes a link owned by ownerID. Deleting an already-deleted
// link succeeds and keeps its original deletion time.
func (s *Service) Delete(ctx context.Context, ownerID, linkID string) error {
	if _, err := uuid.Parse(linkID); err != nil {
		return record("delete", ErrInvalidID)
	}

	l, err := s.links.GetByID(ctx, linkID)
	if errors.Is(err, store.ErrNotFound) {
		return record("delete", ErrNotFound)
	}
	if err != nil {
		return record("delete", fmt.Errorf("look up link: %w", err))
	}
	if l.OwnerID != ownerID {
		return record("delete", ErrForbidden)
	}

	if err := s.links.SoftDelete(ctx, l.ID, s.now()); err != nil {
		return record("delete", fmt.Errorf("delete link: %w", err))
	}
	if !l.IsDeleted() {
		s.log.Info("link deleted", zap.String("link_id", l.ID), zap.String("owner_id", ownerID))
	}
	return record("delete", nil)
}

func (s *Service) ownedActive(ctx context.Context, ownerID, linkID string) (*store.Link, error) {
	if _, err := uuid.Parse(linkID); err != nil {
		return nil, ErrInvalidID
	}
	l, err := s.links.GetActiveByID(ctx, linkID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up link: %w", err)
	}
	if l.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return l, nil
}

// record counts the outcome of op and returns err unchanged.
func record(op string, err error) error {
	result := "ok"
	var verr *validate.Error
	switch {
	case err == nil:
	case errors.As(err, &verr):
		result = "invalid"
	case errors.Is(err, ErrLinkExists):
		result = "exists"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrForbidden):
		result = "forbidden"
	case errors.Is(err, ErrInvalidID):
		result = "invalid_id"
	default:
		result = "error"
	}
	metrics.LinkOpsTotal.WithLabelValues(op, result).Inc()
	return err
}
