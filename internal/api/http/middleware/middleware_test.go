package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	grpcctx "github.com/dtroode/kapu-recovery/internal/api/grpc/context"
	"github.com/dtroode/kapu-recovery/internal/testutil"
)

func TestRequestID_Handle(t *testing.T) {
	t.Parallel()

	existing := uuid.New()

	tests := []struct {
		name   string
		header string
		want   func(t *testing.T, got uuid.UUID)
	}{
		{
			name:   "client id reused",
			header: existing.String(),
			want: func(t *testing.T, got uuid.UUID) {
				assert.Equal(t, existing, got)
			},
		},
		{
			name:   "missing id generated",
			header: "",
			want: func(t *testing.T, got uuid.UUID) {
				assert.NotEqual(t, uuid.Nil, got)
			},
		},
		{
			name:   "garbage id replaced",
			header: "not-a-uuid",
			want: func(t *testing.T, got uuid.UUID) {
				assert.NotEqual(t, uuid.Nil, got)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cm := grpcctx.NewManager()

			var seen uuid.UUID
			h := NewRequestID(cm).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := cm.GetRequestIDFromContext(r.Context())
				require.True(t, ok)
				seen = id
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			tt.want(t, seen)
			assert.Equal(t, seen.String(), rec.Header().Get(RequestIDHeader))
		})
	}
}

func TestLogging_Handle(t *testing.T) {
	t.Parallel()

	h := NewLogging(testutil.MakeNoopLogger(), grpcctx.NewManager()).Handle(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRecover_Handle(t *testing.T) {
	t.Parallel()

	h := NewRecover(testutil.MakeNoopLogger()).Handle(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	var readErr error
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimit(rate.NewLimiter(0, 1))(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	unlimited := RateLimit(nil)(ok)
	for i := 0; i < 10; i++ {
		rec = httptest.NewRecorder()
		unlimited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
