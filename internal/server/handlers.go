package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"timecast/internal/auth"
	"timecast/internal/models"
	"timecast/internal/store"
)

// The original protocol carries the ID token in the request body, so every
// authenticated route is a POST.
type tokenRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type generateRequest struct {
	IDToken    string   `json:"idToken" validate:"required"`
	Categories []string `json:"categories" validate:"required,min=1"`
	StartDate  string   `json:"startDate" validate:"required"`
	EndDate    string   `json:"endDate" validate:"required"`
	Language   string   `json:"language" validate:"required,oneof=en zh"`
	Region     string   `json:"region"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c echo.Context, status int, format string, args ...any) error {
	return c.JSON(status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func (s *Server) verifyToken(c echo.Context, idToken string) (*auth.User, error) {
	return s.verifier.Verify(c.Request().Context(), idToken)
}

func (s *Server) handleGoogleAuth(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing idToken")
	}

	user, err := s.verifyToken(c, req.IDToken)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Google auth failed: %v", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleConfig(c echo.Context) error {
	clientID := s.cfg.GoogleClientID
	if clientID == "" {
		clientID = "YOUR_GOOGLE_CLIENT_ID"
	}
	return c.JSON(http.StatusOK, map[string]string{"googleClientId": clientID})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}

	user, err := s.verifyToken(c, req.IDToken)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Google auth failed: %v", err)
	}

	input := models.GenerationRequest{
		Categories: req.Categories,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Language:   req.Language,
		Region:     req.Region,
	}
	if input.Region == "" {
		input.Region = models.DefaultRegion
	}

	// A stuck upstream call must not stall the request forever.
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.GenerateTimeout)
	defer cancel()

	record, err := s.generator.Run(ctx, input, models.User{Name: user.Name, Email: user.Email})
	if err != nil {
		s.log.Error("podcast generation failed", "user", user.Email, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Podcast generation failed: %v", err)
	}

	if err := s.records.Insert(record); err != nil {
		s.log.Error("record persistence failed", "id", record.ID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Podcast generation failed: %v", err)
	}

	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleListMine(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing idToken")
	}

	user, err := s.verifyToken(c, req.IDToken)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "List load failed: %v", err)
	}

	items, err := s.records.ListOwned(user.Email)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "List load failed: %v", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetMine(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing idToken")
	}

	user, err := s.verifyToken(c, req.IDToken)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Podcast load failed: %v", err)
	}

	record, err := s.records.GetOwned(c.Param("id"), user.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Podcast not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Podcast load failed: %v", err)
	}
	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleDeleteMine(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing idToken")
	}

	user, err := s.verifyToken(c, req.IDToken)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Delete failed: %v", err)
	}

	target, err := s.records.DeleteOwned(c.Param("id"), user.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Podcast not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "Delete failed: %v", err)
	}

	s.blobs.Remove(target.AudioURL)
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleClearAll(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing idToken")
	}

	user, err := s.verifyToken(c, req.IDToken)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Clear failed: %v", err)
	}

	removed, err := s.records.DeleteAllOwned(user.Email)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Clear failed: %v", err)
	}
	for _, r := range removed {
		s.blobs.Remove(r.AudioURL)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "deleted": len(removed)})
}

// handleGetPublic serves share links: no ownership check, the id is the
// capability.
func (s *Server) handleGetPublic(c echo.Context) error {
	record, err := s.records.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Podcast not found")
		}
		return errorJSON(c, http.StatusInternalServerError, "%v", err)
	}
	return c.JSON(http.StatusOK, record)
}
