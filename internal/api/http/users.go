package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
)

// UsersHandler manages login accounts. Every route is staff only.
type UsersHandler struct {
	UserService *service.UserService
}

func renderUser(u domain.User) apisdk.User {
	return apisdk.User{
		ID:        u.ID,
		Username:  u.Username,
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HandleList godoc
//
//	@Summary	List users
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		apisdk.User
//	@Failure	401	{object}	apisdk.ErrorBody
//	@Failure	403	{object}	apisdk.ErrorBody	"Staff only"
//	@Router		/api/user/ [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context(), identityOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]apisdk.User, 0, len(users))
	for _, u := range users {
		out = append(out, renderUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Create a user
//	@Description	An omitted password is generated and returned once in the response.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		apisdk.UserInput	true	"New user"
//	@Success		201		{object}	apisdk.UserCreated
//	@Failure		400		{object}	apisdk.ErrorBody
//	@Failure		403		{object}	apisdk.ErrorBody	"Staff only"
//	@Router			/api/user/ [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in apisdk.UserInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	var username, password string
	var staff bool
	b := binder{full: true}
	bind(&b, "username", &username, in.Username, true)
	bind(&b, "password", &password, in.Password, false)
	bind(&b, "is_staff", &staff, in.IsStaff, false)
	if err := b.err(); err != nil {
		writeError(w, r, err)
		return
	}

	u, generated, err := h.UserService.Create(r.Context(), identityOf(r), strings.TrimSpace(username), password, staff)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, apisdk.UserCreated{User: renderUser(u), Password: generated})
}

// HandleGet godoc
//
//	@Summary	Get a user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	apisdk.User
//	@Failure	403	{object}	apisdk.ErrorBody	"Staff only"
//	@Failure	404	{object}	apisdk.ErrorBody
//	@Router		/api/user/{id}/ [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.Get(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderUser(u))
}

// HandleDelete godoc
//
//	@Summary	Delete a user
//	@Tags		Users
//	@Security	BearerAuth
//	@Param		id	path	string	true	"User ID"
//	@Success	204
//	@Failure	403	{object}	apisdk.ErrorBody	"Staff only"
//	@Failure	404	{object}	apisdk.ErrorBody
//	@Router		/api/user/{id}/ [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), identityOf(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
