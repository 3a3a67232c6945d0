package api

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trendfarm/internal/generation"
	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/theme"
)

const maxUploadSize = 20 << 20

type generateImageRequest struct {
	Prompt        string `json:"prompt"`
	EnhancePrompt *bool  `json:"enhance_prompt"`
	GenerateTPose *bool  `json:"generate_t_pose"`
	AnalyzeTheme  *bool  `json:"analyze_theme"`
}

type generateImageResponse struct {
	Success        bool                  `json:"success"`
	Image          []byte                `json:"image_base64"`
	EnhancedPrompt string                `json:"enhanced_prompt"`
	OriginalPrompt string                `json:"original_prompt"`
	ThemeAnalysis  *models.ThemeAnalysis `json:"theme_analysis"`
	Method         string                `json:"method"`
}

func orTrue(b *bool) bool {
	return b == nil || *b
}

func (h *Handler) handleGenerateImage(c echo.Context) error {
	var req generateImageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	var analysis *models.ThemeAnalysis
	if orTrue(req.AnalyzeTheme) {
		a := theme.Classify(req.Prompt)
		analysis = &a
	}

	img, err := h.svc.Generator.GenerateImage(c.Request().Context(), req.Prompt, orTrue(req.EnhancePrompt), orTrue(req.GenerateTPose))
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	return c.JSON(http.StatusOK, generateImageResponse{
		Success:        true,
		Image:          img.Image,
		EnhancedPrompt: img.Prompt,
		OriginalPrompt: img.OriginalPrompt,
		ThemeAnalysis:  analysis,
		Method:         img.Provider,
	})
}

type modelResponse struct {
	Success bool   `json:"success"`
	GLB     []byte `json:"glb_base64"`
	Method  string `json:"method,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleConvertTo3D takes image_base64 as a query parameter or JSON field
func (h *Handler) handleConvertTo3D(c echo.Context) error {
	var req struct {
		Image string `json:"image_base64"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if q := c.QueryParam("image_base64"); q != "" {
		req.Image = q
	}
	image, err := decodeBase64(req.Image, "image_base64")
	if err != nil {
		return err
	}

	model, err := h.svc.Generator.ConvertTo3D(c.Request().Context(), image)
	if err != nil {
		return fmt.Errorf("3D conversion failed: %w", err)
	}
	return c.JSON(http.StatusOK, modelResponse{Success: true, GLB: model.GLB, Method: model.Provider})
}

type rigRequest struct {
	GLB    string `json:"glb_base64"`
	Method string `json:"rigging_method"`
}

type rigResponse struct {
	Success  bool             `json:"success"`
	GLB      []byte           `json:"glb_base64"`
	Metadata models.RigResult `json:"rigging_metadata"`
	Message  string           `json:"message"`
}

func (h *Handler) handleRigModel(c echo.Context) error {
	var req rigRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	glb, err := decodeBase64(req.GLB, "glb_base64")
	if err != nil {
		return err
	}

	out, err := generation.Rig(glb, req.Method)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rigResponse{
		Success:  true,
		GLB:      out.GLB,
		Metadata: out.Metadata,
		Message:  out.Message,
	})
}

type characterResponse struct {
	Success       bool                 `json:"success"`
	ThemeAnalysis models.ThemeAnalysis `json:"theme_analysis"`
	Image         struct {
		Image          []byte `json:"base64"`
		EnhancedPrompt string `json:"enhanced_prompt"`
		Method         string `json:"method"`
	} `json:"image"`
	Model struct {
		GLB    []byte `json:"glb_base64"`
		Method string `json:"method"`
	} `json:"model"`
	Rigging models.RigResult `json:"rigging"`
	Message string           `json:"message"`
}

// handleCharacterPipeline takes prompt as a query parameter or JSON field
func (h *Handler) handleCharacterPipeline(c echo.Context) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if q := c.QueryParam("prompt"); q != "" {
		req.Prompt = q
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	ch, err := h.svc.Generator.CharacterPipeline(c.Request().Context(), req.Prompt)
	if err != nil {
		return err
	}

	var resp characterResponse
	resp.Success = true
	resp.ThemeAnalysis = ch.Theme
	resp.Image.Image = ch.Image.Image
	resp.Image.EnhancedPrompt = ch.Image.Prompt
	resp.Image.Method = ch.Image.Provider
	resp.Model.GLB = ch.Model.GLB
	resp.Model.Method = ch.Model.Provider
	resp.Rigging = ch.Rig.Metadata
	resp.Message = "Character pipeline completed successfully"
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleImageTo3D(c echo.Context) error {
	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.ImageURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image_url is required")
	}

	model, err := h.svc.Generator.ImageTo3D(c.Request().Context(), req.ImageURL)
	if err != nil {
		return fmt.Errorf("3D generation failed: %w", err)
	}
	return c.JSON(http.StatusOK, modelResponse{
		Success: true,
		GLB:     model.GLB,
		Method:  model.Provider,
		Message: "3D model generated successfully",
	})
}

// handleLocal3D forwards the multipart field "image" to the local TripoSR
// endpoint and returns the model as an attachment
func (h *Handler) handleLocal3D(c echo.Context) error {
	image, filename, err := readFormImage(c, "image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}

	glb, err := h.svc.Local.Generate(c.Request().Context(), image, filename)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="character.glb"`)
	return c.Blob(http.StatusOK, "model/gltf-binary", glb)
}

func readFormImage(c echo.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

func decodeBase64(s, field string) ([]byte, error) {
	if s == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" is required")
	}
	// data URLs carry a media type prefix
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" is not valid base64")
	}
	return data, nil
}
