package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trendfarm/internal/avatar"
)

// handleRPMFromImageURL takes image_url as a query parameter, form field or
// JSON field and streams the finished avatar
func (h *Handler) handleRPMFromImageURL(c echo.Context) error {
	imageURL := c.QueryParam("image_url")
	if imageURL == "" {
		imageURL = c.FormValue("image_url")
	}
	if imageURL == "" && strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req struct {
			ImageURL string `json:"image_url"`
		}
		if err := c.Bind(&req); err != nil {
			return err
		}
		imageURL = req.ImageURL
	}
	if imageURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image_url is required")
	}

	return h.streamAvatar(c, imageURL)
}

func (h *Handler) handleRPMFromUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if !strings.HasPrefix(fh.Header.Get(echo.HeaderContentType), "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Upload must be an image")
	}
	if !h.svc.Images.Configured() {
		return echo.NewHTTPError(http.StatusBadRequest,
			"IMGBB_API_KEY not configured. Either provide IMGBB_API_KEY or call /rpm-from-image-url with a public image URL.")
	}

	image, filename, err := readFormImage(c, "file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}

	imageURL, err := h.svc.Images.Upload(c.Request().Context(), image, filename)
	if err != nil {
		return fmt.Errorf("image upload failed: %w", err)
	}
	h.log.Info().Str("image_url", imageURL).Msg("Upload hosted")

	return h.streamAvatar(c, imageURL)
}

func (h *Handler) streamAvatar(c echo.Context, imageURL string) error {
	asset, err := h.svc.Avatars.FromImageURL(c.Request().Context(), imageURL)
	if err != nil {
		return err
	}
	defer asset.Close()

	f, err := asset.Open()
	if err != nil {
		return fmt.Errorf("failed to open avatar: %w", err)
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, avatar.AssetFilename))
	return c.Stream(http.StatusOK, avatar.ContentType, f)
}

func (h *Handler) handleRPMHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"ready_player_me_configured": h.svc.Avatars.Configured(),
		"imggb_configured":           h.svc.Images.Configured(),
	})
}
