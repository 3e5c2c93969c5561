package apisdk

import (
	"context"
	"net/http"
	"net/url"
)

// EnrollTOTP starts 2FA enrollment for the caller's own profile.
func (c *Client) EnrollTOTP(ctx context.Context, profileID string) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	err := c.do(ctx, true, http.MethodPost, "/api/profile/"+url.PathEscape(profileID)+"/totp/enroll", nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP confirms enrollment with a current code and enables 2FA.
func (c *Client) VerifyTOTP(ctx context.Context, profileID, code string) (*Profile, error) {
	var out Profile
	err := c.do(ctx, true, http.MethodPost, "/api/profile/"+url.PathEscape(profileID)+"/totp/verify", TOTPCodeRequest{Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DisableTOTP turns 2FA off; a current code is required.
func (c *Client) DisableTOTP(ctx context.Context, profileID, code string) error {
	return c.do(ctx, true, http.MethodDelete, "/api/profile/"+url.PathEscape(profileID)+"/totp", TOTPCodeRequest{Code: code}, nil, http.StatusNoContent)
}

// JWKS fetches the public verification keys.
func (c *Client) JWKS(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, false, http.MethodGet, "/.well-known/jwks.json", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}
