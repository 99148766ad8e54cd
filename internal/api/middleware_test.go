package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndallagnol/go-tabletop/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_errorHandler(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		app := &TabletopApp{log: testutil.TestLogger(t)}

		h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status code to be 500")
		assert.Equal(t, "close", rr.Header().Get("Connection"), "expected connection close header")
	})

	t.Run("passes through without panic", func(t *testing.T) {
		app := &TabletopApp{log: testutil.TestLogger(t)}

		h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, rr.Code, "expected handler status to pass through")
	})
}

func Test_authMiddleware(t *testing.T) {
	app := &TabletopApp{log: testutil.TestLogger(t), signingKey: []byte("test-signing-key")}

	t.Run("valid token", func(t *testing.T) {
		token, err := app.createJwtForSession(7, time.Hour)
		assert.NoError(t, err)

		var gotUserId int
		h := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			gotUserId, _ = UserId(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(createJwtCookie(token, time.Hour))
		rr := httptest.NewRecorder()
		h(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected request to pass")
		assert.Equal(t, 7, gotUserId, "expected user id injected into context")
		assert.NotEmpty(t, rr.Header().Get("Cache-Control"), "expected cache control header")
	})

	t.Run("missing cookie", func(t *testing.T) {
		h := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		})

		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected status code to be 401")
	})

	t.Run("invalid token", func(t *testing.T) {
		h := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(createJwtCookie("garbage", time.Hour))
		rr := httptest.NewRecorder()
		h(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected status code to be 401")
	})
}
