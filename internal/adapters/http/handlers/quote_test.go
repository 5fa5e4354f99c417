package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeQuotes(n int) []domain.Quote {
	quotes := make([]domain.Quote, n)
	for i := range quotes {
		quotes[i] = domain.Quote{Body: fmt.Sprintf("Woof %d", i), Author: fmt.Sprintf("Dog %d", i)}
	}

	return quotes
}

// setupQuoteService loads quotes through a mock source.
func setupQuoteService(t *testing.T, quotes []domain.Quote) *app.QuoteService {
	t.Helper()

	source := mocks.NewMockQuoteSource(t)
	source.EXPECT().ParseAll(mock.Anything, mock.Anything).
		Return(domain.ParseResult{Quotes: quotes}, nil)

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Source:  source,
		Sources: []string{"quotes.txt"},
		Logger:  discardLogger(),
		IntN:    func(int) int { return 0 },
	})
	require.NoError(t, service.Load(context.Background()))

	return service
}

func serveQuotes(t *testing.T, h *QuoteHandler, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	h.RegisterQuoteRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	return w
}

func TestToQuoteResponse(t *testing.T) {
	got := toQuoteResponse(domain.Quote{Body: "Fetch", Author: "Rex"})

	assert.Equal(t, QuoteResponse{Body: "Fetch", Author: "Rex", Text: `"Fetch" - Rex`}, got)
}

func TestQuoteHandler_GetRandomQuote(t *testing.T) {
	tests := []struct {
		name       string
		quotes     []domain.Quote
		wantStatus int
		wantCode   string
	}{
		{name: "success", quotes: makeQuotes(3), wantStatus: http.StatusOK},
		{name: "no quotes loaded", quotes: nil, wantStatus: http.StatusNotFound, wantCode: dto.ErrorCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewQuoteHandler(setupQuoteService(t, tt.quotes))

			w := serveQuotes(t, h, "/api/v1/quotes/random")

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantCode != "" {
				var resp dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}

			var resp QuoteResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Woof 0", resp.Body)
			assert.Equal(t, "Dog 0", resp.Author)
		})
	}
}

func TestQuoteHandler_ListQuotes_Pages(t *testing.T) {
	h := NewQuoteHandler(setupQuoteService(t, makeQuotes(5)))

	var (
		bodies []string
		target = "/api/v1/quotes?limit=2"
		pages  int
	)

	for target != "" {
		w := serveQuotes(t, h, target)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.PaginatedResponse[QuoteResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		for _, q := range resp.Items {
			bodies = append(bodies, q.Body)
		}

		pages++
		target = ""
		if resp.HasMore {
			require.NotEmpty(t, resp.NextCursor)
			target = "/api/v1/quotes?limit=2&cursor=" + resp.NextCursor
		}
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{"Woof 0", "Woof 1", "Woof 2", "Woof 3", "Woof 4"}, bodies)
}

func TestQuoteHandler_ListQuotes(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantItems  int
		wantMore   bool
	}{
		{name: "default limit", target: "/api/v1/quotes", wantStatus: http.StatusOK, wantItems: dto.DefaultLimit, wantMore: true},
		{name: "exact fit", target: "/api/v1/quotes?limit=25", wantStatus: http.StatusOK, wantItems: 25},
		{
			name:       "cursor past end",
			target:     "/api/v1/quotes?cursor=" + dto.EncodeCursor(99),
			wantStatus: http.StatusOK,
		},
		{name: "limit too large", target: "/api/v1/quotes?limit=500", wantStatus: http.StatusBadRequest},
		{name: "garbage cursor", target: "/api/v1/quotes?cursor=!!!", wantStatus: http.StatusBadRequest},
		{
			name:       "negative cursor",
			target:     "/api/v1/quotes?cursor=" + dto.EncodeCursor(-1),
			wantStatus: http.StatusBadRequest,
		},
	}

	h := NewQuoteHandler(setupQuoteService(t, makeQuotes(25)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveQuotes(t, h, tt.target)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp dto.PaginatedResponse[QuoteResponse]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Items, tt.wantItems)
			assert.Equal(t, tt.wantMore, resp.HasMore)
		})
	}
}
