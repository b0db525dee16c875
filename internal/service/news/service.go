package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/news"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/markup"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	approvalservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/approval"
	"github.com/google/uuid"
)

const previewLength = 140

type NewsServiceImpl struct {
	repo         news.NewsRepository
	employeeRepo employee.EmployeeRepository
	renderer     *markup.Renderer
	notifier     notification.Service
	authorizer   rbac.Authorizer
	clock        clock.Clock
}

func NewNewsService(
	repo news.NewsRepository,
	employeeRepo employee.EmployeeRepository,
	renderer *markup.Renderer,
	notifier notification.Service,
	authorizer rbac.Authorizer,
	clk clock.Clock,
) news.NewsService {
	return &NewsServiceImpl{
		repo:         repo,
		employeeRepo: employeeRepo,
		renderer:     renderer,
		notifier:     notifier,
		authorizer:   authorizer,
		clock:        clk,
	}
}

func (s *NewsServiceImpl) require(ctx context.Context, perm user.Permission) (auth.Session, error) {
	session, err := auth.SessionFromContext(ctx)
	if err != nil {
		return auth.Session{}, err
	}
	if !s.authorizer.Can(session.Role, perm) {
		return auth.Session{}, approval.ErrForbidden
	}
	return session, nil
}

func (s *NewsServiceImpl) Create(ctx context.Context, req news.CreatePostRequest) (news.PostResponse, error) {
	session, err := s.require(ctx, user.PermissionNewsManage)
	if err != nil {
		return news.PostResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return news.PostResponse{}, err
	}

	html, err := s.renderer.Render(req.Body)
	if err != nil {
		return news.PostResponse{}, err
	}
	slug, err := slugify(req.Title)
	if err != nil {
		return news.PostResponse{}, err
	}

	created, err := s.repo.Create(ctx, news.Post{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		BodyMD:      req.Body,
		BodyHTML:    html,
		AuthorID:    session.UserID,
		Pinned:      req.Pinned,
		PublishedAt: s.clock.Now(),
	})
	if err != nil {
		return news.PostResponse{}, err
	}

	slog.Info("News post published", "post_id", created.ID, "slug", created.Slug, "author_id", created.AuthorID)
	s.broadcast(ctx, session, created)
	return news.ToResponse(created), nil
}

// broadcast notifies every active employee except the author.
func (s *NewsServiceImpl) broadcast(ctx context.Context, session auth.Session, p news.Post) {
	recipients, err := s.employeeRepo.ListActiveIDs(ctx, clock.DateOf(s.clock.Now()))
	if err != nil {
		slog.Error("Failed to load news recipients", "post_id", p.ID, "error", err)
		return
	}

	var sender *string
	if session.EmployeeID != "" {
		sender = &session.EmployeeID
	}
	preview := []rune(strings.Join(strings.Fields(markup.Plain(p.BodyHTML)), " "))
	if len(preview) > previewLength {
		preview = append(preview[:previewLength], '…')
	}
	for _, id := range recipients {
		if id == session.EmployeeID {
			continue
		}
		s.notifier.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: id,
			SenderID:    sender,
			Type:        notification.TypeNewsPublished,
			Title:       p.Title,
			Message:     string(preview),
			Data:        map[string]any{"post_id": p.ID, "slug": p.Slug},
		})
	}
}

func (s *NewsServiceImpl) Get(ctx context.Context, id string) (news.PostResponse, error) {
	if _, err := s.require(ctx, user.PermissionNewsView); err != nil {
		return news.PostResponse{}, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return news.PostResponse{}, err
	}
	return news.ToResponse(p), nil
}

func (s *NewsServiceImpl) List(ctx context.Context, page, limit int) (news.ListPostResponse, error) {
	if _, err := s.require(ctx, user.PermissionNewsView); err != nil {
		return news.ListPostResponse{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	posts, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return news.ListPostResponse{}, fmt.Errorf("failed to list news posts: %w", err)
	}
	out := make([]news.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, news.ToResponse(p))
	}
	return news.ListPostResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: approvalservice.TotalPages(total, limit),
		Posts:      out,
	}, nil
}

func (s *NewsServiceImpl) Update(ctx context.Context, req news.UpdatePostRequest) (news.PostResponse, error) {
	if _, err := s.require(ctx, user.PermissionNewsManage); err != nil {
		return news.PostResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return news.PostResponse{}, err
	}

	p, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return news.PostResponse{}, err
	}
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		html, err := s.renderer.Render(*req.Body)
		if err != nil {
			return news.PostResponse{}, err
		}
		p.BodyMD, p.BodyHTML = *req.Body, html
	}
	if req.Pinned != nil {
		p.Pinned = *req.Pinned
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return news.PostResponse{}, err
	}
	return news.ToResponse(updated), nil
}

func (s *NewsServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.require(ctx, user.PermissionNewsManage); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("News post deleted", "post_id", id)
	return nil
}

// slugify lowercases title into dash-separated words and appends a short
// random suffix so equal titles never collide.
func slugify(title string) (string, error) {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if runes := []rune(base); len(runes) > 60 {
		base = strings.TrimSuffix(string(runes[:60]), "-")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:8]
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}
