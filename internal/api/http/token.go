package http

import (
	"net/http"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
)

// TokenHandler serves the password and refresh token endpoints.
type TokenHandler struct {
	TokenService *service.TokenService
}

// HandleToken godoc
//
//	@Summary		Obtain a token pair
//	@Description	Exchanges username and password for an access and refresh token. When the profile has 2FA enabled the current TOTP code must be sent as otp.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.TokenRequest		true	"Credentials"
//	@Success		200		{object}	apisdk.TokenResponse	"access, refresh, token_type, expires_in"
//	@Failure		400		{object}	apisdk.ErrorBody		"Malformed body"
//	@Failure		401		{object}	apisdk.ErrorBody		"invalid_credentials, otp_required or invalid_otp"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/api/token/ [post].
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req apisdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	pair, err := h.TokenService.Login(r.Context(), req.Username, req.Password, req.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTokenPair(w, pair)
}

// HandleRefresh godoc
//
//	@Summary		Rotate a refresh token
//	@Description	Revokes the presented refresh token and issues a new pair.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	apisdk.TokenResponse	"access, refresh, token_type, expires_in"
//	@Failure		400		{object}	apisdk.ErrorBody		"Malformed body"
//	@Failure		401		{object}	apisdk.ErrorBody		"invalid_refresh_token"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/api/token/refresh/ [post].
func (h *TokenHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req apisdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTokenPair(w, pair)
}

func writeTokenPair(w http.ResponseWriter, pair service.TokenPair) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apisdk.TokenResponse{
		Access:    pair.AccessToken,
		Refresh:   pair.RefreshToken,
		TokenType: "Bearer",
		ExpiresIn: int(pair.ExpiresIn.Seconds()),
	})
}
