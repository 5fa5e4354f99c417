package dto

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails map[string]string
	}{
		{
			name:        "unmatched author",
			err:         domain.NewValidationError("author", "no quote by Garfield"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantDetails: map[string]string{"author": "no quote by Garfield"},
		},
		{
			name:       "missing image",
			err:        domain.NewNotFoundError("image", "photos/cat.jpg"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
		{
			name:       "quote file type",
			err:        domain.NewUnsupportedFormatError("quotes.json"),
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   ErrorCodeUnsupportedFormat,
		},
		{
			name:       "undecodable image",
			err:        domain.NewImageLoadError("dog.jpg", fmt.Errorf("unexpected EOF")),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrorCodeImageLoad,
		},
		{
			name:       "download host down",
			err:        domain.NewUnavailableError("image-download", "circuit open"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeUnavailable,
		},
		{
			name:       "request deadline",
			err:        fmt.Errorf("render: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   ErrorCodeTimeout,
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
			assert.Equal(t, tt.wantStatus, HTTPStatusFromCode(tt.wantCode))
		})
	}

	status, resp := MapError(nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestMapError_HidesInternalDetail(t *testing.T) {
	_, resp := MapError(fmt.Errorf("open /etc/meme/secret.png: permission denied"))

	assert.NotContains(t, resp.Error.Message, "/etc/meme")
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/memes", nil)
	c.Request.Header.Set("X-Request-ID", "req-42")

	HandleError(c, domain.NewNotFoundError("image", "rex.jpg"))

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "req-42", resp.TraceID)
}

func TestHandleRequestError(t *testing.T) {
	_, badCursor := Paginate([]int{1}, PaginationRequest{Cursor: "!!"})
	invalid := Validate(memeBody{Width: 9000})

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "undecodable body",
			err:         ErrBinding,
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeBadRequest,
			wantMessage: "body must be JSON",
		},
		{
			name:        "field failures",
			err:         invalid,
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "request validation failed",
			wantDetails: map[string]string{"width": "must be at most 8192"},
		},
		{
			name:       "bad cursor",
			err:        badCursor,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeBadRequest,
		},
		{
			name:       "domain error falls through",
			err:        domain.NewNotFoundError("quote", "author"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			HandleRequestError(c, tt.err, "body must be JSON")

			require.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
		})
	}
}

func TestGetTraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  trace.SpanID{1},
	})

	tests := []struct {
		name  string
		setup func(c *gin.Context)
		want  string
	}{
		{name: "nothing", setup: func(*gin.Context) {}, want: ""},
		{
			name:  "request id header",
			setup: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "req-1") },
			want:  "req-1",
		},
		{
			name: "active span wins over header",
			setup: func(c *gin.Context) {
				c.Request.Header.Set("X-Request-ID", "req-1")
				c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), spanCtx))
			},
			want: "4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{
			name: "explicit key wins",
			setup: func(c *gin.Context) {
				c.Set("trace_id", "set-by-handler")
				c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), spanCtx))
			},
			want: "set-by-handler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name     string
		req      PaginationRequest
		want     []string
		wantMore bool
		wantErr  bool
	}{
		{name: "first page", req: PaginationRequest{Limit: 2}, want: []string{"a", "b"}, wantMore: true},
		{name: "middle page", req: PaginationRequest{Limit: 2, Cursor: EncodeCursor(2)}, want: []string{"c", "d"}, wantMore: true},
		{name: "last page", req: PaginationRequest{Limit: 2, Cursor: EncodeCursor(4)}, want: []string{"e"}},
		{name: "past end", req: PaginationRequest{Cursor: EncodeCursor(50)}, want: []string{}},
		{name: "default limit", req: PaginationRequest{}, want: items},
		{name: "garbage", req: PaginationRequest{Cursor: "%%%"}, wantErr: true},
		{name: "negative", req: PaginationRequest{Cursor: EncodeCursor(-3)}, wantErr: true},
		{
			name:    "foreign payload",
			req:     PaginationRequest{Cursor: base64.RawURLEncoding.EncodeToString([]byte(`{"id":"x"}`))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paginate(items, tt.req)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCursor)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Items)
			assert.Equal(t, tt.wantMore, page.HasMore)
			assert.Equal(t, tt.wantMore, page.NextCursor != "")
		})
	}
}

func TestPaginate_WalksAllPages(t *testing.T) {
	items := make([]int, 7)
	for i := range items {
		items[i] = i
	}

	var seen []int

	req := PaginationRequest{Limit: 3}
	for {
		page, err := Paginate(items, req)
		require.NoError(t, err)

		seen = append(seen, MapPage(page, func(i int) int { return i * 10 }).Items...)

		if !page.HasMore {
			break
		}

		req.Cursor = page.NextCursor
	}

	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60}, seen)
}

func TestGetLimit(t *testing.T) {
	tests := map[int]int{0: DefaultLimit, -5: DefaultLimit, 1: 1, 50: 50, MaxLimit: MaxLimit, 1000: MaxLimit}

	for in, want := range tests {
		assert.Equal(t, want, PaginationRequest{Limit: in}.GetLimit(), in)
	}
}

type memeBody struct {
	ImageURL string `json:"imageUrl" validate:"omitempty,httpurl"`
	Body     string `json:"body"     validate:"max=10"`
	Width    int    `json:"width"    validate:"omitempty,gte=1,lte=8192"`
}

type pageQuery struct {
	Limit int `form:"limit" validate:"omitempty,lte=100"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want map[string]string
	}{
		{name: "valid", in: memeBody{ImageURL: "https://dogs.test/rex.jpg", Body: "woof", Width: 500}, want: map[string]string{}},
		{name: "ftp url", in: memeBody{ImageURL: "ftp://dogs.test/rex.jpg"}, want: map[string]string{"imageUrl": "must be an absolute http or https URL"}},
		{name: "relative url", in: memeBody{ImageURL: "/rex.jpg"}, want: map[string]string{"imageUrl": "must be an absolute http or https URL"}},
		{name: "long body", in: memeBody{Body: strings.Repeat("w", 11)}, want: map[string]string{"body": "must be at most 10 characters"}},
		{name: "huge width", in: memeBody{Width: 9000}, want: map[string]string{"width": "must be at most 8192"}},
		{name: "form name", in: pageQuery{Limit: 101}, want: map[string]string{"limit": "must be at most 100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)

			if len(tt.want) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.want, ValidationErrors(err))
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"body":"woof"}`},
		{name: "malformed", body: `{"body":`, wantErr: ErrBinding},
		{name: "wrong type", body: `{"width":"wide"}`, wantErr: ErrBinding},
		{name: "invalid", body: `{"width":0,"imageUrl":"mailto:rex@dogs.test"}`, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var got memeBody
			err := BindAndValidate(c, &got)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantErr == ErrBinding {
				assert.Empty(t, ValidationErrors(err))
			}
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)

	var q pageQuery
	require.ErrorIs(t, BindQueryAndValidate(c, &q), ErrBinding)

	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=7", nil)
	require.NoError(t, BindQueryAndValidate(c, &q))
	assert.Equal(t, 7, q.Limit)
}
