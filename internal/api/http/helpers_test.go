package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/cryptox"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer     = "dds2-test"
	bootstrapToken = "bootstrap-secret"
	adminUsername  = "admin"
	adminPassword  = "admin-password"
	userPassword   = "password123"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

type testServer struct {
	URL    string
	Router *Router
}

// newTestServer serves a fully wired Router over an in-memory store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	blobs, err := blobx.NewFSStore(t.TempDir())
	require.NoError(t, err)

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer})
	require.NoError(t, err)

	generous := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	m := metricsx.New()
	base := service.Base{Store: st}

	r := NewRouter(km.KeySet, km.Verifier, "test", st, blobs, slogx.Discard())
	r.Limits = Limits{Credentials: generous, Writes: generous, Reads: generous, Public: generous}
	r.MaxUploadBytes = 1 << 20
	r.Metrics = m
	r.TokenService = &service.TokenService{
		Base:       base,
		KeyManager: km,
		Metrics:    m,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	r.BootstrapService = &service.BootstrapService{Base: base, Token: bootstrapToken}
	r.MFAService = &service.MFAService{Base: base, Issuer: testIssuer}
	r.UserService = &service.UserService{Base: base}
	r.ProfileService = &service.ProfileService{Base: base}
	r.TenantService = &service.TenantService{Base: base}
	r.RoleService = &service.RoleService{Base: base}
	r.TagService = &service.TagService{Base: base}
	r.CredentialService = &service.StorageCredentialService{Base: base}
	r.DomainService = &service.DomainService{Base: base}
	r.SenderService = &service.SenderService{Base: base}
	r.AttachmentService = &service.AttachmentService{Base: base, Blobs: blobs, Metrics: m}
	r.BroadcastService = &service.BroadcastService{Base: base}
	r.DataSetService = &service.DataSetService{Base: base, Blobs: blobs, Metrics: m}
	r.BalanceService = &service.BalanceService{Base: base, Metrics: m}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{URL: srv.URL, Router: r}
}

// admin bootstraps the server and returns a logged-in staff client.
func (s *testServer) admin(t *testing.T) *apisdk.Client {
	t.Helper()
	ctx := context.Background()
	c := apisdk.NewClient(s.URL)
	_, err := c.Bootstrap(ctx, bootstrapToken, adminUsername, adminPassword)
	require.NoError(t, err)
	require.NoError(t, c.Login(ctx, adminUsername, adminPassword, ""))
	return c
}

// member creates a non-staff user with a profile in tenants and returns a
// logged-in client plus the profile.
func (s *testServer) member(t *testing.T, admin *apisdk.Client, username string, tenants ...string) (*apisdk.Client, *apisdk.Profile) {
	t.Helper()
	ctx := context.Background()
	u, err := admin.Users().Create(ctx, apisdk.UserInput{
		Username: apisdk.Ptr(username),
		Password: apisdk.Ptr(userPassword),
	})
	require.NoError(t, err)

	if tenants == nil {
		tenants = []string{}
	}
	p, err := admin.Profiles().Create(ctx, apisdk.ProfileInput{User: apisdk.Ptr(u.ID), Tenants: &tenants})
	require.NoError(t, err)

	c := apisdk.NewClient(s.URL)
	require.NoError(t, c.Login(ctx, username, userPassword, ""))
	return c, p
}

func (s *testServer) tenant(t *testing.T, admin *apisdk.Client, name string) *apisdk.Tenant {
	t.Helper()
	tn, err := admin.Tenants().Create(context.Background(), apisdk.TenantInput{Name: apisdk.Ptr(name)})
	require.NoError(t, err)
	return tn
}

// raw sends a request with the client's access token and returns the
// response with its body read.
func (s *testServer) raw(t *testing.T, c *apisdk.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.URL+path, rd)
	require.NoError(t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c != nil {
		access, _ := c.Tokens()
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// requireAPIError asserts err is an API error with the given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) *apisdk.Error {
	t.Helper()
	var apiErr *apisdk.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func decodeError(t *testing.T, b []byte) apisdk.ErrorBody {
	t.Helper()
	var out apisdk.ErrorBody
	require.NoError(t, json.Unmarshal(b, &out), string(b))
	return out
}
