package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages holds the parsed HTML templates.
var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// WebHandler serves the browser front end.
type WebHandler struct {
	service *app.MemeService
	now     func() time.Time
}

// NewWebHandler creates a new web handler.
func NewWebHandler(service *app.MemeService) *WebHandler {
	return &WebHandler{service: service, now: time.Now}
}

type memePage struct {
	Title   string
	URL     string
	Version int64
	Width   int
	Height  int
	Caption string
}

type formPage struct {
	Title string
}

type errorPage struct {
	Title   string
	Message string
}

// Random handles GET / with a random image and a random quote.
func (h *WebHandler) Random(c *gin.Context) {
	h.generate(c, app.GenerateRequest{})
}

// Form handles GET /create.
func (h *WebHandler) Form(c *gin.Context) {
	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     "meme_form.html",
		Data:     formPage{Title: "Create a meme"},
	})
}

// Create handles POST /create. Placeholder values ("", " ", "-") count as
// absent; a supplied image_url is downloaded and removed after rendering.
func (h *WebHandler) Create(c *gin.Context) {
	h.generate(c, app.GenerateRequest{
		ImageURL: c.PostForm("image_url"),
		Body:     c.PostForm("body"),
		Author:   c.PostForm("author"),
	})
}

func (h *WebHandler) generate(c *gin.Context, req app.GenerateRequest) {
	meme, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     "meme.html",
		Data: memePage{
			Title:   "Your meme",
			URL:     MemeURL(meme),
			Version: h.now().UnixNano(),
			Width:   meme.Width,
			Height:  meme.Height,
			Caption: meme.Caption,
		},
	})
}

func (h *WebHandler) renderError(c *gin.Context, err error) {
	status, resp := dto.MapError(err)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "meme page failed",
			slog.Any("error", err),
		)
	}

	c.Render(status, render.HTML{
		Template: pages,
		Name:     "error.html",
		Data: errorPage{
			Title:   http.StatusText(status),
			Message: resp.Error.Message,
		},
	})
}

// RegisterWebRoutes registers the HTML pages.
func (h *WebHandler) RegisterWebRoutes(r gin.IRoutes) {
	r.GET("/", h.Random)
	r.GET("/create", h.Form)
	r.POST("/create", h.Create)
}
