package news

import "context"

type NewsService interface {
	Create(ctx context.Context, req CreatePostRequest) (PostResponse, error)
	Get(ctx context.Context, id string) (PostResponse, error)
	List(ctx context.Context, page, limit int) (ListPostResponse, error)
	Update(ctx context.Context, req UpdatePostRequest) (PostResponse, error)
	Delete(ctx context.Context, id string) error
}
