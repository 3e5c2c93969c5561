package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims jwtx.Claims
	err    error
}

func (s stubVerifier) Verify(string) (jwtx.Claims, error) { return s.claims, s.err }

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), tag("outer"), tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	access := jwtx.Claims{TokenUse: jwtx.TokenUseAccess, Scopes: []string{"api"}}
	access.Subject = "user-1"

	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = httpx.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		v      jwtx.Verifier
		want   int
	}{
		{"missing header", "", stubVerifier{claims: access}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubVerifier{claims: access}, http.StatusUnauthorized},
		{"bad token", "Bearer abc", stubVerifier{err: errors.New("nope")}, http.StatusUnauthorized},
		{"not an access token", "Bearer abc", stubVerifier{claims: jwtx.Claims{}}, http.StatusUnauthorized},
		{"valid", "Bearer abc", stubVerifier{claims: access}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			httpx.AuthnMiddleware(tc.v)(next).ServeHTTP(rec, req)

			require.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				require.Equal(t, "user-1", gotUser)
			} else {
				require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
				require.Contains(t, rec.Body.String(), "invalid_token")
			}
		})
	}
}

func TestRequireAnyScope(t *testing.T) {
	claims := jwtx.Claims{TokenUse: jwtx.TokenUseAccess, Scopes: []string{"api"}}
	claims.Subject = "u"

	h := httpx.Chain(okHandler(), httpx.AuthnMiddleware(stubVerifier{claims: claims}), httpx.RequireAnyScope("admin"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "insufficient_scope")

	h = httpx.Chain(okHandler(), httpx.AuthnMiddleware(stubVerifier{claims: claims}), httpx.RequireAnyScope("admin", "api"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	decode := func(raw string) (body, error) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
		return b, err
	}

	b, err := decode(`{"name":"acme"}`)
	require.NoError(t, err)
	require.Equal(t, "acme", b.Name)

	_, err = decode(``)
	require.Error(t, err)
	_, err = decode(`{"nmae":"typo"}`)
	require.Error(t, err)
	_, err = decode(`{"name":"a"}{"name":"b"}`)
	require.Error(t, err)

	t.Run("lenient skips unknown fields", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"id":"x","name":"acme","created_by":"u"}`))
		require.NoError(t, httpx.DecodeJSONLenient(httptest.NewRecorder(), req, &b))
		require.Equal(t, "acme", b.Name)
	})

	t.Run("oversized body", func(t *testing.T) {
		raw := `{"name":"` + strings.Repeat("a", httpx.MaxJSONBody) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		var b body
		err := httpx.DecodeJSONLenient(httptest.NewRecorder(), req, &b)

		var tooLarge *http.MaxBytesError
		require.ErrorAs(t, err, &tooLarge)
	})
}
