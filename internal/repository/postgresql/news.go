package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/news"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type newsRepositoryImpl struct {
	db *database.DB
}

func NewNewsRepository(db *database.DB) news.NewsRepository {
	return &newsRepositoryImpl{db: db}
}

const postColumns = `
	p.id, p.title, p.slug, p.body_md, p.body_html, p.author_id, p.pinned,
	p.published_at, p.created_at, p.updated_at, e.full_name
`

func scanPost(row pgx.Row) (news.Post, error) {
	var p news.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.BodyMD, &p.BodyHTML, &p.AuthorID, &p.Pinned,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName,
	)
	return p, err
}

func (r *newsRepositoryImpl) Create(ctx context.Context, p news.Post) (news.Post, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return news.Post{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO news_posts (id, title, slug, body_md, body_html, author_id, pinned, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, id, p.Title, p.Slug, p.BodyMD, p.BodyHTML, p.AuthorID, p.Pinned, p.PublishedAt).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return news.Post{}, fmt.Errorf("create news post: %w", err)
	}
	return p, nil
}

func (r *newsRepositoryImpl) GetByID(ctx context.Context, id string) (news.Post, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPost(q.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM news_posts p
		LEFT JOIN employees e ON e.id = p.author_id
		WHERE p.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Post{}, news.ErrPostNotFound
		}
		return news.Post{}, fmt.Errorf("get news post: %w", err)
	}
	return p, nil
}

func (r *newsRepositoryImpl) List(ctx context.Context, page, limit int) ([]news.Post, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM news_posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count news posts: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+postColumns+`
		FROM news_posts p
		LEFT JOIN employees e ON e.id = p.author_id
		ORDER BY p.pinned DESC, p.published_at DESC
		LIMIT $1 OFFSET $2
	`, limit, pageOffset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list news posts: %w", err)
	}
	defer rows.Close()

	posts := []news.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan news post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate news posts: %w", err)
	}
	return posts, total, nil
}

func (r *newsRepositoryImpl) Update(ctx context.Context, p news.Post) (news.Post, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE news_posts
		SET title = $2, body_md = $3, body_html = $4, pinned = $5, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Title, p.BodyMD, p.BodyHTML, p.Pinned)
	if err != nil {
		return news.Post{}, fmt.Errorf("update news post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.Post{}, news.ErrPostNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *newsRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM news_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.ErrPostNotFound
	}
	return nil
}
