package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first staff user.
//
//	@Summary		Bootstrap the first staff user
//	@Description	Creates a staff user on an empty database. The token must match the configured BOOTSTRAP_TOKEN and the endpoint works only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.BootstrapRequest	true	"Bootstrap token and staff credentials"
//	@Success		201		{object}	apisdk.User				"The created staff user"
//	@Failure		400		{object}	apisdk.ErrorBody		"Invalid request body or validation failed"
//	@Failure		401		{object}	apisdk.ErrorBody		"Invalid bootstrap token"
//	@Failure		409		{object}	apisdk.ErrorBody		"System has already been bootstrapped"
//	@Router			/api/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slogx.FromContext(r.Context()).Info("bootstrap requested")

	var req apisdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	u, err := h.BootstrapService.Bootstrap(r.Context(), req.Token, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, renderUser(u))
}
