package news

import "context"

type NewsRepository interface {
	Create(ctx context.Context, p Post) (Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
	// List orders pinned posts first, then newest first.
	List(ctx context.Context, page, limit int) ([]Post, int64, error)
	Update(ctx context.Context, p Post) (Post, error)
	Delete(ctx context.Context, id string) error
}
