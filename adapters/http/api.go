package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/usecase"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

// APIHandler serves profiles, the methods catalogue and practicum progress.
type APIHandler struct {
	profiles domain.ProfileStore
	methods  domain.MethodStore
	progress *usecase.ProgressService
}

func NewAPIHandler(profiles domain.ProfileStore, methods domain.MethodStore, progress *usecase.ProgressService) *APIHandler {
	return &APIHandler{profiles: profiles, methods: methods, progress: progress}
}

type profileRequest struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *APIHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.profiles.GetProfile(ctx, userID(c))
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}
	if err != nil {
		log.WithCtx(ctx).Error("get profile", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateProfile creates or updates the caller's profile. The role is never
// taken from the request body.
func (h *APIHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	p := &domain.Profile{ID: userID(c), FullName: req.FullName, AvatarURL: req.AvatarURL}
	if existing, err := h.profiles.GetProfile(ctx, p.ID); err == nil {
		p.Role = existing.Role
	}
	if err := h.profiles.UpsertProfile(ctx, p); err != nil {
		log.WithCtx(ctx).Error("update profile", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *APIHandler) ListMethods(c echo.Context) error {
	ctx := c.Request().Context()
	methods, err := h.methods.ListActiveMethods(ctx)
	if err != nil {
		log.WithCtx(ctx).Error("list methods", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load methods")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"methods": methods})
}

func (h *APIHandler) ListProgress(c echo.Context) error {
	ctx := c.Request().Context()
	progress, err := h.progress.List(ctx, userID(c))
	if err != nil {
		log.WithCtx(ctx).Error("list progress", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load progress")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"progress": progress})
}

// RecordProgress stores one graded attempt for the caller.
func (h *APIHandler) RecordProgress(c echo.Context) error {
	var upd domain.ProgressUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	ctx := c.Request().Context()
	p, err := h.progress.Record(ctx, userID(c), upd)
	if errors.Is(err, usecase.ErrMissingTaskID) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.WithCtx(ctx).Error("record progress", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save progress")
	}
	return c.JSON(http.StatusOK, p)
}
