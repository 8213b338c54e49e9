package v1

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
	"github.com/barruu/console/middleware"
)

// AuthService is the facade over the /auth endpoints. It owns the session
// lifecycle: register/login persist token+user atomically, CurrentUser
// refreshes the cached snapshot, logout clears it. Dependencies are
// injected via the constructor — no global state.
type AuthService struct {
	client *api.Client
	store  domain.SessionStore

	// LogoutOnNetworkError controls what CurrentUser does when the API is
	// unreachable: false (the default) preserves the session so a network
	// blip does not log the operator out; true clears it, matching the
	// behavior of the original web console.
	LogoutOnNetworkError bool
}

// NewAuthService creates an AuthService over the given client and store.
func NewAuthService(client *api.Client, store domain.SessionStore) *AuthService {
	return &AuthService{client: client, store: store}
}

// Credentials carries a registration request.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account. On success the returned token and user are
// persisted together before the method returns.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", creds.Username),
	))
	defer span.End()

	var env domain.AuthEnvelope
	if err := s.client.Post(ctx, "/auth/register", creds, &env); err != nil {
		span.RecordError(err)
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.Status == 409 {
			return nil, fmt.Errorf("register %q: %w", creds.Username, ErrUserExists)
		}
		return nil, fmt.Errorf("register %q: %w", creds.Username, err)
	}
	if !env.Success || env.Token == "" || env.User == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return nil, fmt.Errorf("register %q: %w: %s", creds.Username, ErrRejected, env.Reason())
	}

	if err := s.store.SetAuth(env.Token, env.User); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	span.SetAttributes(
		attribute.String("user.id", env.User.ID),
		attribute.Bool("auth.success", true),
	)
	return env.User, nil
}

// Login authenticates with email and password. On success the token and
// user are persisted together; on refusal the session is left untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	body := map[string]string{"email": email, "password": password}
	var env domain.AuthEnvelope
	if err := s.client.Post(ctx, "/auth/login", body, &env); err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrUnauthorized) {
			span.AddEvent("authentication.failed")
			return nil, fmt.Errorf("login %q: %w", email, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login %q: %w", email, err)
	}
	if !env.Success || env.Token == "" || env.User == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("login %q: %w: %s", email, ErrInvalidCredentials, env.Reason())
	}

	if err := s.store.SetAuth(env.Token, env.User); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	span.SetAttributes(
		attribute.String("user.id", env.User.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")
	return env.User, nil
}

// Logout clears the local session. It is idempotent and never talks to the
// server; the token simply stops being presented.
func (s *AuthService) Logout() error {
	return s.store.Clear()
}

// CurrentUser re-validates the session against /auth/me and refreshes the
// cached user snapshot. A server-side rejection clears the session and
// returns ErrSessionExpired. A transport failure clears it only when
// LogoutOnNetworkError is set; otherwise the session survives and the
// caller may retry.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.current_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	sess, err := s.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !sess.Authenticated() {
		span.SetAttributes(attribute.Bool("session.present", false))
		return nil, ErrNotAuthenticated
	}

	var env domain.AuthEnvelope
	if err := s.client.Get(ctx, "/auth/me", &env); err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrForbidden) {
			s.store.Clear()
			return nil, fmt.Errorf("refresh session: %w", ErrSessionExpired)
		}
		if errors.Is(err, api.ErrUnreachable) && s.LogoutOnNetworkError {
			s.store.Clear()
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if !env.Success || env.User == nil {
		s.store.Clear()
		return nil, fmt.Errorf("refresh session: %w", ErrSessionExpired)
	}

	if err := s.store.SetUser(env.User); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}

	span.SetAttributes(
		attribute.String("user.id", env.User.ID),
		attribute.Bool("session.valid", true),
	)
	return env.User, nil
}

// UpdateProfile applies a partial user update and refreshes the cached
// snapshot on success.
func (s *AuthService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.update_profile", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	var env domain.AuthEnvelope
	if err := s.client.Put(ctx, "/auth/profile", update, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if !env.Success || env.User == nil {
		return nil, fmt.Errorf("update profile: %w: %s", ErrRejected, env.Reason())
	}
	if err := s.store.SetUser(env.User); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	return env.User, nil
}

// UpgradeToDeveloper requests role elevation and refreshes the cached
// snapshot on success.
func (s *AuthService) UpgradeToDeveloper(ctx context.Context, upgrade domain.DeveloperUpgrade) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.upgrade_to_developer", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	var env domain.AuthEnvelope
	if err := s.client.Post(ctx, "/auth/upgrade-to-developer", upgrade, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("upgrade to developer: %w", err)
	}
	if !env.Success || env.User == nil {
		return nil, fmt.Errorf("upgrade to developer: %w: %s", ErrRejected, env.Reason())
	}
	if err := s.store.SetUser(env.User); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	return env.User, nil
}

// IsAuthenticated reports whether a token is present locally. It never
// talks to the server.
func (s *AuthService) IsAuthenticated() (bool, error) {
	sess, err := s.store.Get()
	if err != nil {
		return false, fmt.Errorf("read session: %w", err)
	}
	return sess.Authenticated(), nil
}

// CachedUser returns the last user snapshot the server handed back, or nil
// when none is stored. Role predicates computed from it can lag a
// server-side role change until the next CurrentUser call.
func (s *AuthService) CachedUser() (*domain.User, error) {
	sess, err := s.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return sess.User, nil
}
