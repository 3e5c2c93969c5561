package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	s := newTestServer(t)
	c := apisdk.NewClient(s.URL)
	ctx := context.Background()

	_, err := c.Bootstrap(ctx, "wrong", adminUsername, adminPassword)
	requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeUnauthorized)

	u, err := c.Bootstrap(ctx, bootstrapToken, adminUsername, adminPassword)
	require.NoError(t, err)
	require.True(t, u.IsStaff)
	require.Equal(t, adminUsername, u.Username)

	_, err = c.Bootstrap(ctx, bootstrapToken, "second", adminPassword)
	requireAPIError(t, err, http.StatusConflict, apisdk.ErrorCodeAlreadyBootstrapped)
}

func TestTokenEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.admin(t)
	ctx := context.Background()

	t.Run("bad credentials", func(t *testing.T) {
		c := apisdk.NewClient(s.URL)
		err := c.Login(ctx, adminUsername, "nope", "")
		requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeInvalidCredentials)

		err = c.Login(ctx, "nobody", adminPassword, "")
		requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeInvalidCredentials)
	})

	t.Run("login response", func(t *testing.T) {
		resp, body := s.raw(t, nil, http.MethodPost, "/api/token/", apisdk.TokenRequest{
			Username: adminUsername,
			Password: adminPassword,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		require.Contains(t, string(body), `"token_type":"Bearer"`)
		require.Contains(t, string(body), `"expires_in":900`)
	})

	t.Run("refresh rotation", func(t *testing.T) {
		c := apisdk.NewClient(s.URL)
		require.NoError(t, c.Login(ctx, adminUsername, adminPassword, ""))
		_, oldRefresh := c.Tokens()

		require.NoError(t, c.Refresh(ctx))
		access, newRefresh := c.Tokens()
		require.NotEqual(t, oldRefresh, newRefresh)
		require.NotEmpty(t, access)

		_, err := c.RefreshToken(ctx, oldRefresh)
		requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeInvalidRefreshToken)

		_, err = c.RefreshToken(ctx, "garbage")
		requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeInvalidRefreshToken)

		_, err = c.Tenants().List(ctx)
		require.NoError(t, err)
	})
}

func TestTwoFactorFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin(t)
	ctx := context.Background()

	alice, profile := s.member(t, admin, "alice")
	bob, _ := s.member(t, admin, "bob")

	enroll, err := alice.EnrollTOTP(ctx, profile.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enroll.Secret)
	require.Contains(t, enroll.OTPAuthURL, "otpauth://totp/")

	// Another user cannot touch alice's enrollment.
	_, err = bob.EnrollTOTP(ctx, profile.ID)
	require.Error(t, err)

	_, err = alice.VerifyTOTP(ctx, profile.ID, "000000")
	apiErr := requireAPIError(t, err, http.StatusBadRequest, apisdk.ErrorCodeValidation)
	require.Contains(t, apiErr.Details, "code")

	code, err := totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)
	p, err := alice.VerifyTOTP(ctx, profile.ID, code)
	require.NoError(t, err)
	require.True(t, p.Enable2FA)

	c := apisdk.NewClient(s.URL)
	err = c.Login(ctx, "alice", userPassword, "")
	requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeOTPRequired)
	err = c.Login(ctx, "alice", userPassword, "123456")
	if code != "123456" {
		requireAPIError(t, err, http.StatusUnauthorized, apisdk.ErrorCodeInvalidOTP)
	}

	code, err = totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, c.Login(ctx, "alice", userPassword, code))

	// The profile representation never carries the secret.
	resp, body := s.raw(t, c, http.MethodGet, "/api/profile/"+profile.ID+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, string(body), "totp_secret")
	require.NotContains(t, string(body), enroll.Secret)

	require.NoError(t, c.DisableTOTP(ctx, profile.ID, code))
	require.NoError(t, apisdk.NewClient(s.URL).Login(ctx, "alice", userPassword, ""))
}
