package handlers

import (
	"net/http"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// StaticPrefix is the URL prefix the meme output directory is served under.
const StaticPrefix = "/static"

// MemeHandler handles the meme JSON API.
type MemeHandler struct {
	service   *app.MemeService
	imageRoot string
}

// NewMemeHandler creates a new meme handler. Client supplied image paths
// are resolved against imageRoot and may not leave it.
func NewMemeHandler(service *app.MemeService, imageRoot string) *MemeHandler {
	return &MemeHandler{service: service, imageRoot: imageRoot}
}

// CreateMemeRequest is the JSON body of POST /api/v1/memes. Every field is
// optional; missing values are picked at random or looked up. ImagePath is
// relative to the image directory.
type CreateMemeRequest struct {
	ImagePath string `json:"imagePath" validate:"max=1024"`
	ImageURL  string `json:"imageUrl"  validate:"omitempty,httpurl,max=2048"`
	Body      string `json:"body"      validate:"max=500"`
	Author    string `json:"author"    validate:"max=200"`
	Width     int    `json:"width"     validate:"omitempty,gte=1,lte=8192"`
}

// MemeResponse describes a rendered meme.
type MemeResponse struct {
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Caption string `json:"caption"`
}

// toMemeResponse converts a domain Meme to an HTTP response.
func toMemeResponse(m *domain.Meme) MemeResponse {
	return MemeResponse{
		URL:     MemeURL(m),
		Width:   m.Width,
		Height:  m.Height,
		Caption: m.Caption,
	}
}

// MemeURL is where a rendered meme is served from.
func MemeURL(m *domain.Meme) string {
	return path.Join(StaticPrefix, filepath.Base(m.Path))
}

// CreateMeme handles POST /api/v1/memes
//
// @Summary Generate a meme
// @Tags memes
// @Accept json
// @Produce json
// @Param request body CreateMemeRequest true "Meme request"
// @Success 201 {object} MemeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/memes [post]
func (h *MemeHandler) CreateMeme(c *gin.Context) {
	var req CreateMemeRequest

	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleRequestError(c, err, "request body must be a JSON object")
		return
	}

	meme, err := h.service.Generate(c.Request.Context(), app.GenerateRequest{
		ImagePath: req.ImagePath,
		ImageURL:  req.ImageURL,
		Body:      req.Body,
		Author:    req.Author,
		Width:     req.Width,
		ImageRoot: h.imageRoot,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMemeResponse(meme))
}

// RegisterMemeRoutes registers meme routes on the given router group.
func (h *MemeHandler) RegisterMemeRoutes(rg *gin.RouterGroup) {
	rg.POST("/memes", h.CreateMeme)
}
