// Package v1 exposes the console gateway's HTTP surface: thin handlers
// that bind requests, call the service facades and translate errors onto
// HTTP status codes. Admin and developer groups sit behind the access
// guard; auth endpoints are open so login can happen at all.
package v1

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/barruu/console/internal/core/domain"
	logicv1 "github.com/barruu/console/internal/logic/v1"
	"github.com/barruu/console/middleware"
)

// Handler groups the gateway handlers. Dependencies are injected via the
// constructor — no global state.
type Handler struct {
	auth      *logicv1.AuthService
	admin     *logicv1.AdminService
	developer *logicv1.DeveloperService
}

// NewHandler creates a Handler over the three facades.
func NewHandler(auth *logicv1.AuthService, admin *logicv1.AdminService, developer *logicv1.DeveloperService) *Handler {
	return &Handler{auth: auth, admin: admin, developer: developer}
}

// RegisterRoutes mounts the gateway surface on the given group. The admin
// group requires the admin role; the developer group admits developers and
// admins, per the role hierarchy.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.Me)
	rg.PUT("/auth/profile", h.UpdateProfile)
	rg.POST("/auth/upgrade-to-developer", h.UpgradeToDeveloper)

	admin := rg.Group("/admin", middleware.Guard(h.auth, domain.RoleAdmin))
	admin.GET("/stats", h.Stats)
	admin.GET("/users", h.Users)
	admin.PUT("/users/:id/verify", h.VerifyDeveloper)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.GET("/apps", h.Apps)
	admin.PUT("/apps/:id/status", h.UpdateAppStatus)
	admin.PUT("/apps/:id/feature", h.ToggleFeature)
	admin.GET("/activity", h.Activity)

	dev := rg.Group("/developer", middleware.Guard(h.auth, domain.RoleDeveloper))
	dev.GET("/apps", h.MyApps)
	dev.POST("/apps", h.PublishApp)
	dev.PUT("/apps/:id", h.UpdateApp)
	dev.DELETE("/apps/:id", h.DeleteApp)
	dev.GET("/media", h.MyMedia)
	dev.POST("/media", h.UploadMedia)
	dev.PUT("/media/:id", h.UpdateMedia)
	dev.DELETE("/media/:id", h.DeleteMedia)
}

// Register handles account creation and logs the operator in on success.
func (h *Handler) Register(c *gin.Context) {
	logger := zerolog.Ctx(c.Request.Context())

	var creds logicv1.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), creds)
	if err != nil {
		logger.Error().Err(err).Str("username", creds.Username).Msg("Registration failed")
		respondError(c, err)
		return
	}

	logger.Info().Str("user_id", user.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// Login authenticates against the remote API and persists the session.
func (h *Handler) Login(c *gin.Context) {
	logger := zerolog.Ctx(c.Request.Context())

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Login failed")
		respondError(c, err)
		return
	}

	logger.Info().Str("user_id", user.ID).Msg("Login successful")
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Logout clears the local session. Always succeeds on a clear store.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me re-validates the session and returns the refreshed user.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("Session refresh failed")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile applies a partial profile update.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpgradeToDeveloper requests developer role elevation.
func (h *Handler) UpgradeToDeveloper(c *gin.Context) {
	var upgrade domain.DeveloperUpgrade
	if err := c.ShouldBindJSON(&upgrade); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.auth.UpgradeToDeveloper(c.Request.Context(), upgrade)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Stats returns the admin dashboard aggregate.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// Users lists users with role/search filters.
func (h *Handler) Users(c *gin.Context) {
	page, err := h.admin.Users(c.Request.Context(), logicv1.UserListOptions{
		Role:   domain.Role(c.Query("role")),
		Search: c.Query("search"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// VerifyDeveloper marks a developer account verified.
func (h *Handler) VerifyDeveloper(c *gin.Context) {
	user, err := h.admin.VerifyDeveloper(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// DeleteUser removes a user account.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Apps lists apps across all developers, pending included.
func (h *Handler) Apps(c *gin.Context) {
	page, err := h.admin.Apps(c.Request.Context(), logicv1.AppListOptions{
		Status: domain.AppStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateAppStatus transitions an app through the moderation flow. The
// dashboard sends the status it is looking at so the transition table can
// be checked before the upstream call.
func (h *Handler) UpdateAppStatus(c *gin.Context) {
	var req struct {
		Current domain.AppStatus `json:"current" binding:"required"`
		Status  domain.AppStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.admin.UpdateAppStatus(c.Request.Context(), c.Param("id"), req.Current, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().
		Str("app_id", app.ID).
		Str("status", string(app.Status)).
		Msg("App status updated")
	c.JSON(http.StatusOK, gin.H{"success": true, "data": app})
}

// ToggleFeature flips the featured flag of an app.
func (h *Handler) ToggleFeature(c *gin.Context) {
	app, err := h.admin.ToggleFeature(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": app})
}

// Activity returns the recent activity feed.
func (h *Handler) Activity(c *gin.Context) {
	feed, err := h.admin.RecentActivity(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": feed})
}

// MyApps lists the operator's own apps.
func (h *Handler) MyApps(c *gin.Context) {
	apps, err := h.developer.MyApps(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": apps})
}

// PublishApp submits a new app from a multipart form: the metadata fields
// plus the package file under "appFile".
func (h *Handler) PublishApp(c *gin.Context) {
	draft := draftFromForm(c)

	header, err := c.FormFile("appFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appFile is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read appFile"})
		return
	}
	defer file.Close()

	app, err := h.developer.PublishApp(c.Request.Context(), draft, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().
		Str("app_id", app.ID).
		Str("package_id", app.PackageID).
		Msg("App published")
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": app})
}

// UpdateApp replaces an app's metadata and optionally its package file.
func (h *Handler) UpdateApp(c *gin.Context) {
	draft := draftFromForm(c)

	var filename string
	var file io.Reader
	if header, err := c.FormFile("appFile"); err == nil {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read appFile"})
			return
		}
		defer f.Close()
		filename, file = header.Filename, f
	}

	app, err := h.developer.UpdateApp(c.Request.Context(), c.Param("id"), draft, filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": app})
}

// DeleteApp removes one of the operator's apps.
func (h *Handler) DeleteApp(c *gin.Context) {
	if err := h.developer.DeleteApp(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MyMedia lists the operator's media, optionally filtered by type.
func (h *Handler) MyMedia(c *gin.Context) {
	media, err := h.developer.MyMedia(c.Request.Context(), domain.MediaType(c.Query("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": media})
}

// UploadMedia uploads a new asset from a multipart form: metadata fields
// plus the binary under "file".
func (h *Handler) UploadMedia(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	up := domain.MediaUpload{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Type:        domain.MediaType(c.PostForm("type")),
	}

	media, err := h.developer.UploadMedia(c.Request.Context(), up, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": media})
}

// UpdateMedia edits an asset's metadata.
func (h *Handler) UpdateMedia(c *gin.Context) {
	var update domain.MediaUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	media, err := h.developer.UpdateMedia(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": media})
}

// DeleteMedia removes an asset.
func (h *Handler) DeleteMedia(c *gin.Context) {
	if err := h.developer.DeleteMedia(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// draftFromForm collects the app metadata fields of a multipart form.
func draftFromForm(c *gin.Context) domain.AppDraft {
	return domain.AppDraft{
		Name:             c.PostForm("name"),
		PackageID:        c.PostForm("packageId"),
		ShortDescription: c.PostForm("shortDescription"),
		Description:      c.PostForm("description"),
		Version:          c.PostForm("version"),
		Category:         c.PostForm("category"),
	}
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
