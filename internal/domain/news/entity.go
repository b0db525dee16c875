package news

import "time"

type Post struct {
	ID          string
	Title       string
	Slug        string
	BodyMD      string
	BodyHTML    string
	AuthorID    string
	Pinned      bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	AuthorName *string
}
