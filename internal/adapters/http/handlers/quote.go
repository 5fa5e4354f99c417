package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteResponse is the HTTP response structure for a quote.
type QuoteResponse struct {
	Body   string `json:"body"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		Body:   q.Body,
		Author: q.Author,
		Text:   q.String(),
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns the loaded quotes in ingestion order, one page at a time.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.PaginatedResponse[QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.PaginationRequest

	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleRequestError(c, err, "invalid pagination parameters")
		return
	}

	page, err := dto.Paginate(h.service.All(), req)
	if err != nil {
		dto.HandleRequestError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, dto.MapPage(page, toQuoteResponse))
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Returns one of the loaded quotes chosen uniformly.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Success 200 {object} QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	quote, err := h.service.Random()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.GET("/random", h.GetRandomQuote)
}
