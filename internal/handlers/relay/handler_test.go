package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/relay"
	"github.com/gabapcia/walletscope/internal/relay/mocks"
)

func relayPath(target string) string {
	return "/relay?url=" + url.QueryEscape(target)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandler_CORS(t *testing.T) {
	t.Run("should answer preflight with 204 and permissive headers", func(t *testing.T) {
		// Arrange
		h := NewHandler(mocks.NewService(t))
		req := httptest.NewRequest(http.MethodOptions, relayPath("https://lcd.osmosis.zone/x"), nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("should add CORS headers to errors too", func(t *testing.T) {
		// Arrange
		h := NewHandler(mocks.NewService(t))
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/relay", nil))

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHandler_Health(t *testing.T) {
	t.Run("should report ok", func(t *testing.T) {
		// Arrange
		h := NewHandler(mocks.NewService(t))
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})
}

func TestHandler_Forward(t *testing.T) {
	t.Run("should return the upstream body verbatim", func(t *testing.T) {
		// Arrange
		svc := mocks.NewService(t)
		target := "https://lcd.osmosis.zone/cosmos/tx/v1beta1/txs?events=a"
		svc.EXPECT().Forward(mock.Anything, relay.Request{Method: http.MethodGet, Target: target}).
			Return(relay.Response{ContentType: "application/json; charset=utf-8", Body: []byte(`{"tx_responses":[]}`)}, nil).Once()
		rec := httptest.NewRecorder()

		// Act
		NewHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, relayPath(target), nil))

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"tx_responses":[]}`, rec.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "MISS", rec.Header().Get(CacheHeader))
	})

	t.Run("should flag cached responses", func(t *testing.T) {
		// Arrange
		svc := mocks.NewService(t)
		svc.EXPECT().Forward(mock.Anything, mock.Anything).
			Return(relay.Response{ContentType: "application/json", Body: []byte(`{}`), Cached: true}, nil).Once()
		rec := httptest.NewRecorder()

		// Act
		NewHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, relayPath("https://a.b/c"), nil))

		// Assert
		assert.Equal(t, "HIT", rec.Header().Get(CacheHeader))
	})

	t.Run("should pass POST bodies and content type through", func(t *testing.T) {
		// Arrange
		svc := mocks.NewService(t)
		svc.EXPECT().Forward(mock.Anything, mock.Anything).
			RunAndReturn(func(_ context.Context, req relay.Request) (relay.Response, error) {
				assert.Equal(t, http.MethodPost, req.Method)
				assert.Equal(t, "application/json", req.ContentType)
				body, err := io.ReadAll(req.Body)
				require.NoError(t, err)
				assert.Equal(t, `{"row":25}`, string(body))
				return relay.Response{ContentType: "application/json", Body: []byte(`{"code":0}`)}, nil
			}).Once()
		req := httptest.NewRequest(http.MethodPost, relayPath("https://polkadot.api.subscan.io/api/v2/scan/transfers"), strings.NewReader(`{"row":25}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		// Act
		NewHandler(svc).ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"code":0}`, rec.Body.String())
	})

	t.Run("should reject a missing url with 400", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		NewHandler(mocks.NewService(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/relay", nil))

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing url parameter", decodeEnvelope(t, rec).Error)
	})

	t.Run("should reject methods other than GET and POST", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		NewHandler(mocks.NewService(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, relayPath("https://a.b"), nil))

		// Assert
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       envelope
	}{
		{
			name:       "should map an invalid target to 400",
			err:        fmt.Errorf("%w: %q", relay.ErrInvalidTarget, "ftp://x"),
			wantStatus: http.StatusBadRequest,
			want:       envelope{Error: `invalid target url: "ftp://x"`},
		},
		{
			name:       "should map a forbidden host to 403",
			err:        fmt.Errorf("%w: evil.example", relay.ErrHostNotAllowed),
			wantStatus: http.StatusForbidden,
			want:       envelope{Error: "host not allowed: evil.example"},
		},
		{
			name:       "should mirror upstream status codes in the envelope",
			err:        &relay.UpstreamError{Status: http.StatusTooManyRequests, Body: "slow down"},
			wantStatus: http.StatusTooManyRequests,
			want:       envelope{Error: "upstream request failed", Status: http.StatusTooManyRequests, Body: "slow down"},
		},
		{
			name:       "should map transport failures to 502",
			err:        fmt.Errorf("%w: %w", relay.ErrUpstreamUnavailable, errors.New("dial tcp: refused")),
			wantStatus: http.StatusBadGateway,
			want:       envelope{Error: "upstream request failed", Status: http.StatusBadGateway, Body: "upstream unavailable: dial tcp: refused"},
		},
		{
			name:       "should map oversized bodies to 413",
			err:        fmt.Errorf("%w: %w", relay.ErrUpstreamUnavailable, &http.MaxBytesError{Limit: 4}),
			wantStatus: http.StatusRequestEntityTooLarge,
			want:       envelope{Error: "request body too large"},
		},
		{
			name:       "should hide unexpected errors",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			want:       envelope{Error: "internal error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := mocks.NewService(t)
			svc.EXPECT().Forward(mock.Anything, mock.Anything).Return(relay.Response{}, tt.err).Once()
			rec := httptest.NewRecorder()

			// Act
			NewHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, relayPath("https://a.b/c"), nil))

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, decodeEnvelope(t, rec))
		})
	}
}

func TestHandler_EndToEnd(t *testing.T) {
	t.Run("should relay to an allowed upstream and refuse others", func(t *testing.T) {
		// Arrange
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/fail" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(strings.Repeat("e", 600)))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"height":"42"}`))
		}))
		t.Cleanup(upstream.Close)

		u, err := url.Parse(upstream.URL)
		require.NoError(t, err)

		svc, err := relay.New(transporthttp.NewClient(transporthttp.WithRetryMax(0)), []string{u.Hostname()})
		require.NoError(t, err)

		srv := httptest.NewServer(NewHandler(svc))
		t.Cleanup(srv.Close)

		// Act
		ok, err := http.Get(srv.URL + relayPath(upstream.URL+"/blocks/latest"))
		require.NoError(t, err)
		defer ok.Body.Close()
		okBody, _ := io.ReadAll(ok.Body)

		failed, err := http.Get(srv.URL + relayPath(upstream.URL+"/fail"))
		require.NoError(t, err)
		defer failed.Body.Close()
		var failedEnv envelope
		require.NoError(t, json.NewDecoder(failed.Body).Decode(&failedEnv))

		forbidden, err := http.Get(srv.URL + relayPath("https://example.com/"))
		require.NoError(t, err)
		defer forbidden.Body.Close()

		// Assert
		assert.Equal(t, http.StatusOK, ok.StatusCode)
		assert.Equal(t, `{"height":"42"}`, string(okBody))

		assert.Equal(t, http.StatusInternalServerError, failed.StatusCode)
		assert.Equal(t, http.StatusInternalServerError, failedEnv.Status)
		assert.Len(t, failedEnv.Body, transporthttp.ErrorBodyLimit)

		assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	})
}
