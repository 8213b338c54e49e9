package v1

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
	"github.com/barruu/console/middleware"
)

// Defaults applied to list queries when the caller leaves them zero.
const (
	defaultPage  = 1
	defaultLimit = 20
)

// AdminService is the facade over the /admin endpoints: platform stats,
// user management and app moderation. Authorization is enforced by the
// server; the guard keeps non-admins from reaching these calls in the
// first place.
type AdminService struct {
	client *api.Client
}

// NewAdminService creates an AdminService over the given client.
func NewAdminService(client *api.Client) *AdminService {
	return &AdminService{client: client}
}

// Stats fetches the server-computed dashboard aggregate.
func (s *AdminService) Stats(ctx context.Context) (*domain.Stats, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.stats", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	var env domain.Envelope[domain.Stats]
	if err := s.client.Get(ctx, "/admin/stats", &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	return unwrap(&env, "fetch stats")
}

// UserListOptions filters and pages the user listing.
type UserListOptions struct {
	Role   domain.Role
	Search string
	Page   int
	Limit  int
}

// Users fetches one page of users. The server does all filtering; the
// returned page is passed through untouched.
func (s *AdminService) Users(ctx context.Context, opts UserListOptions) (*domain.Page[domain.User], error) {
	ctx, span := middleware.StartSpan(ctx, "admin.users", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	q := listQuery(opts.Page, opts.Limit)
	if opts.Role != "" {
		q.Set("role", string(opts.Role))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var page domain.Page[domain.User]
	if err := s.client.Get(ctx, "/admin/users?"+q.Encode(), &page); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	if !page.Success {
		return nil, fmt.Errorf("list users: %w: %s", ErrRejected, pageReason(page.Error, page.Message))
	}
	return &page, nil
}

// VerifyDeveloper marks a developer account as verified.
func (s *AdminService) VerifyDeveloper(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.verify_developer", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	var env domain.Envelope[domain.User]
	if err := s.client.Put(ctx, "/admin/users/"+url.PathEscape(userID)+"/verify", nil, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("verify developer %s: %w", userID, err)
	}
	return unwrap(&env, "verify developer "+userID)
}

// DeleteUser removes a user account.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	ctx, span := middleware.StartSpan(ctx, "admin.delete_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	var env domain.Envelope[struct{}]
	if err := s.client.Delete(ctx, "/admin/users/"+url.PathEscape(userID), &env); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	if !env.Success {
		return fmt.Errorf("delete user %s: %w: %s", userID, ErrRejected, env.Reason())
	}
	return nil
}

// AppListOptions filters and pages the app listing.
type AppListOptions struct {
	Status domain.AppStatus
	Search string
	Page   int
	Limit  int
}

// Apps fetches one page of apps across all developers, pending included.
func (s *AdminService) Apps(ctx context.Context, opts AppListOptions) (*domain.Page[domain.App], error) {
	ctx, span := middleware.StartSpan(ctx, "admin.apps", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	q := listQuery(opts.Page, opts.Limit)
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var page domain.Page[domain.App]
	if err := s.client.Get(ctx, "/admin/apps?"+q.Encode(), &page); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list apps: %w", err)
	}
	if !page.Success {
		return nil, fmt.Errorf("list apps: %w: %s", ErrRejected, pageReason(page.Error, page.Message))
	}
	return &page, nil
}

// UpdateAppStatus transitions an app through the moderation flow. The
// transition is checked against the domain table before any request goes
// out; the server stays authoritative for the rest. The caller re-fetches
// the listing to observe the new state.
func (s *AdminService) UpdateAppStatus(ctx context.Context, appID string, current, next domain.AppStatus) (*domain.App, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.update_app_status", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("app.id", appID),
		attribute.String("app.status", string(next)),
	))
	defer span.End()

	if !current.CanTransition(next) {
		return nil, fmt.Errorf("app %s: %s -> %s: %w", appID, current, next, ErrInvalidTransition)
	}

	body := map[string]string{"status": string(next)}
	var env domain.Envelope[domain.App]
	if err := s.client.Put(ctx, "/admin/apps/"+url.PathEscape(appID)+"/status", body, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update app %s status: %w", appID, err)
	}
	return unwrap(&env, "update app "+appID+" status")
}

// ToggleFeature flips the featured flag of an app. Featuring is
// non-terminal and server-validated.
func (s *AdminService) ToggleFeature(ctx context.Context, appID string) (*domain.App, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.toggle_feature", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("app.id", appID),
	))
	defer span.End()

	var env domain.Envelope[domain.App]
	if err := s.client.Put(ctx, "/admin/apps/"+url.PathEscape(appID)+"/feature", nil, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("toggle feature on app %s: %w", appID, err)
	}
	return unwrap(&env, "toggle feature on app "+appID)
}

// RecentActivity fetches the latest moderation and registration events.
// A limit of zero asks for the server default of 20.
func (s *AdminService) RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.recent_activity", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if limit <= 0 {
		limit = defaultLimit
	}
	var env domain.Envelope[[]domain.Activity]
	if err := s.client.Get(ctx, "/admin/activity?limit="+strconv.Itoa(limit), &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch activity: %w", err)
	}
	feed, err := unwrap(&env, "fetch activity")
	if err != nil {
		return nil, err
	}
	return *feed, nil
}

// listQuery builds the shared page/limit query parameters.
func listQuery(page, limit int) url.Values {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// unwrap returns the envelope payload or an ErrRejected describing why the
// server refused the operation.
func unwrap[T any](env *domain.Envelope[T], op string) (*T, error) {
	if !env.Success || env.Data == nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrRejected, env.Reason())
	}
	return env.Data, nil
}

// pageReason mirrors Envelope.Reason for the paginated shape.
func pageReason(errMsg, message string) string {
	if errMsg != "" {
		return errMsg
	}
	if message != "" {
		return message
	}
	return "request rejected"
}
