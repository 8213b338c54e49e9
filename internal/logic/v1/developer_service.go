package v1

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
	"github.com/barruu/console/middleware"
)

// DeveloperService is the facade over the developer-facing endpoints: the
// caller's own apps and media library. Multipart payloads are assembled
// here with the field names the upload handlers expect; file contents are
// never inspected, the server validates type and size.
type DeveloperService struct {
	client *api.Client
}

// NewDeveloperService creates a DeveloperService over the given client.
func NewDeveloperService(client *api.Client) *DeveloperService {
	return &DeveloperService{client: client}
}

// MyApps lists the caller's own apps in every status.
func (s *DeveloperService) MyApps(ctx context.Context) ([]domain.App, error) {
	ctx, span := middleware.StartSpan(ctx, "developer.my_apps", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	var env domain.Envelope[[]domain.App]
	if err := s.client.Get(ctx, "/apps/developer/my-apps", &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list my apps: %w", err)
	}
	apps, err := unwrap(&env, "list my apps")
	if err != nil {
		return nil, err
	}
	return *apps, nil
}

// PublishApp submits a new app: the draft metadata plus the package file.
// The app enters the moderation queue in pending status.
func (s *DeveloperService) PublishApp(ctx context.Context, draft domain.AppDraft, filename string, pkg io.Reader) (*domain.App, error) {
	ctx, span := middleware.StartSpan(ctx, "developer.publish_app", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("app.package_id", draft.PackageID),
	))
	defer span.End()

	form := draftForm(draft)
	if pkg != nil {
		form.File("appFile", filename, pkg)
	}

	var env domain.Envelope[domain.App]
	if err := s.client.PostForm(ctx, "/apps", form, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("publish app %q: %w", draft.PackageID, err)
	}
	return unwrap(&env, "publish app "+draft.PackageID)
}

// UpdateApp replaces an app's metadata and, when pkg is non-nil, its
// package file.
func (s *DeveloperService) UpdateApp(ctx context.Context, appID string, draft domain.AppDraft, filename string, pkg io.Reader) (*domain.App, error) {
	ctx, span := middleware.StartSpan(ctx, "developer.update_app", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("app.id", appID),
	))
	defer span.End()

	form := draftForm(draft)
	if pkg != nil {
		form.File("appFile", filename, pkg)
	}

	var env domain.Envelope[domain.App]
	if err := s.client.PutForm(ctx, "/apps/"+url.PathEscape(appID), form, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update app %s: %w", appID, err)
	}
	return unwrap(&env, "update app "+appID)
}

// DeleteApp removes one of the caller's apps.
func (s *DeveloperService) DeleteApp(ctx context.Context, appID string) error {
	ctx, span := middleware.StartSpan(ctx, "developer.delete_app", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("app.id", appID),
	))
	defer span.End()

	var env domain.Envelope[struct{}]
	if err := s.client.Delete(ctx, "/apps/"+url.PathEscape(appID), &env); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete app %s: %w", appID, err)
	}
	if !env.Success {
		return fmt.Errorf("delete app %s: %w: %s", appID, ErrRejected, env.Reason())
	}
	return nil
}

// UploadMedia uploads a new asset with its metadata.
func (s *DeveloperService) UploadMedia(ctx context.Context, up domain.MediaUpload, filename string, file io.Reader) (*domain.Media, error) {
	ctx, span := middleware.StartSpan(ctx, "developer.upload_media", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("media.type", string(up.Type)),
	))
	defer span.End()

	if !up.Type.Valid() {
		return nil, fmt.Errorf("upload %q: type %q: %w", up.Name, up.Type, ErrInvalidMediaType)
	}

	form := api.NewForm().
		Field("name", up.Name).
		Field("description", up.Description).
		Field("type", string(up.Type)).
		File("file", filename, file)

	var env domain.Envelope[domain.Media]
	if err := s.client.PostForm(ctx, "/media/upload", form, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("upload %q: %w", up.Name, err)
	}
	return unwrap(&env, "upload "+up.Name)
}

// MyMedia lists the caller's media, optionally restricted to one type.
// An empty type lists everything.
func (s *DeveloperService) MyMedia(ctx context.Context, mediaType domain.MediaType) ([]domain.Media, error) {
	ctx, span := middleware.StartSpan(ctx, "developer.my_media", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	path := "/media/my-media"
	if mediaType != "" {
		if !mediaType.Valid() {
			return nil, fmt.Errorf("list media: type %q: %w", mediaType, ErrInvalidMediaType)
		}
		path += "?type=" + url.QueryEscape(string(mediaType))
	}

	var env domain.Envelope[[]domain.Media]
	if err := s.client.Get(ctx, path, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list media: %w", err)
	}
	media, err := unwrap(&env, "list media")
	if err != nil {
		return nil, err
	}
	return *media, nil
}

// UpdateMedia edits an asset's metadata. The binary is immutable; delete
// and re-upload to replace it.
func (s *DeveloperService) UpdateMedia(ctx context.Context, mediaID string, update domain.MediaUpdate) (*domain.Media, error) {
	ctx, span := middleware.StartSpan(ctx, "developer.update_media", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("media.id", mediaID),
	))
	defer span.End()

	var env domain.Envelope[domain.Media]
	if err := s.client.Put(ctx, "/media/"+url.PathEscape(mediaID), update, &env); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update media %s: %w", mediaID, err)
	}
	return unwrap(&env, "update media "+mediaID)
}

// DeleteMedia removes an asset.
func (s *DeveloperService) DeleteMedia(ctx context.Context, mediaID string) error {
	ctx, span := middleware.StartSpan(ctx, "developer.delete_media", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("media.id", mediaID),
	))
	defer span.End()

	var env domain.Envelope[struct{}]
	if err := s.client.Delete(ctx, "/media/"+url.PathEscape(mediaID), &env); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete media %s: %w", mediaID, err)
	}
	if !env.Success {
		return fmt.Errorf("delete media %s: %w: %s", mediaID, ErrRejected, env.Reason())
	}
	return nil
}

// draftForm maps an AppDraft onto the multipart fields the publish and
// update handlers expect.
func draftForm(draft domain.AppDraft) *api.Form {
	return api.NewForm().
		Field("name", draft.Name).
		Field("packageId", draft.PackageID).
		Field("shortDescription", draft.ShortDescription).
		Field("description", draft.Description).
		Field("version", draft.Version).
		Field("category", draft.Category)
}
