package news

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreatePostRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Body   string `json:"body" validate:"required,max=20000"`
	Pinned bool   `json:"pinned"`
}

func (r *CreatePostRequest) Validate() error {
	return validator.Struct(r)
}

type UpdatePostRequest struct {
	ID     string  `json:"-"`
	Title  *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Body   *string `json:"body,omitempty" validate:"omitempty,min=1,max=20000"`
	Pinned *bool   `json:"pinned,omitempty"`
}

func (r *UpdatePostRequest) Validate() error {
	return validator.Struct(r)
}

type PostResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Body        string    `json:"body"`
	BodyHTML    string    `json:"body_html"`
	AuthorID    string    `json:"author_id"`
	AuthorName  *string   `json:"author_name,omitempty"`
	Pinned      bool      `json:"pinned"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(p Post) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Body:        p.BodyMD,
		BodyHTML:    p.BodyHTML,
		AuthorID:    p.AuthorID,
		AuthorName:  p.AuthorName,
		Pinned:      p.Pinned,
		PublishedAt: p.PublishedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type ListPostResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Posts      []PostResponse `json:"posts"`
}
