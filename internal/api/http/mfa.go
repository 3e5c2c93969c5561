package http

import (
	"net/http"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// MFAHandler handles TOTP enrollment on the caller's own profile.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll godoc
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a new TOTP secret for the profile. 2FA stays off until the secret is confirmed with verify.
//	@Tags			Two-factor
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Profile ID"
//	@Success		200	{object}	apisdk.TOTPEnrollResponse	"Secret and otpauth URL"
//	@Failure		401	{object}	apisdk.ErrorBody
//	@Failure		404	{object}	apisdk.ErrorBody	"Not the caller's profile"
//	@Router			/api/profile/{id}/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	enroll, err := h.MFAService.Enroll(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apisdk.TOTPEnrollResponse{
		Secret:     enroll.Secret,
		OTPAuthURL: enroll.URL,
	})
}

// HandleVerify godoc
//
//	@Summary	Confirm TOTP enrollment
//	@Tags		Two-factor
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Profile ID"
//	@Param		request	body		apisdk.TOTPCodeRequest	true	"Current TOTP code"
//	@Success	200		{object}	apisdk.Profile			"Profile with enable_2fa set"
//	@Failure	400		{object}	apisdk.ErrorBody		"Invalid code"
//	@Failure	404		{object}	apisdk.ErrorBody
//	@Router		/api/profile/{id}/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req apisdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	p, err := h.MFAService.Verify(r.Context(), identityOf(r), r.PathValue("id"), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("2fa enabled", "profile_id", p.ID)
	httpx.WriteJSON(w, http.StatusOK, renderProfile(p))
}

// HandleDisable godoc
//
//	@Summary	Disable TOTP
//	@Tags		Two-factor
//	@Security	BearerAuth
//	@Accept		json
//	@Param		id		path	string					true	"Profile ID"
//	@Param		request	body	apisdk.TOTPCodeRequest	true	"Current TOTP code"
//	@Success	204
//	@Failure	400	{object}	apisdk.ErrorBody	"Invalid code"
//	@Failure	404	{object}	apisdk.ErrorBody
//	@Router		/api/profile/{id}/totp [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	var req apisdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	id := r.PathValue("id")
	if err := h.MFAService.Disable(r.Context(), identityOf(r), id, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("2fa disabled", "profile_id", id)
	w.WriteHeader(http.StatusNoContent)
}
