package http

import (
	"net/http"

	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/jwtx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe covering the database, the object store and the signing keys.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	apisdk.HealthResponse	"status, checks"
//	@Failure		503	{object}	apisdk.HealthResponse	"status, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store, blobs blobx.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"storage":  "ok",
			"signer":   "ok",
		}
		status, code := "ok", http.StatusOK
		fail := func(name, msg string) {
			checks[name] = "error: " + msg
			status, code = "degraded", http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			fail("database", err.Error())
		}
		if blobs == nil {
			fail("storage", "not configured")
		} else if err := blobs.Ping(r.Context()); err != nil {
			fail("storage", err.Error())
		}
		if !keys.IsReady() {
			fail("signer", "no keys loaded")
		}

		httpx.WriteJSON(w, code, apisdk.HealthResponse{Status: status, Checks: checks})
	}
}
