package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
)

// resource adapts a service with the List/Get/Create/Update/Delete shape to
// the /api/<name>/ routes. T is the domain type and In the JSON payload.
type resource[T, In any] struct {
	List   func(context.Context, service.Identity) ([]T, error)
	Get    func(context.Context, service.Identity, string) (T, error)
	Create func(context.Context, service.Identity, T) (T, error)
	Update func(context.Context, service.Identity, string, func(*T) error) (T, error)
	Delete func(context.Context, service.Identity, string) error

	// Bind copies in onto dst. With full set (POST and PUT) a missing
	// required field is a validation error.
	Bind func(in In, dst *T, full bool) error

	Render func(T) (any, error)

	// CreateFrom replaces Bind+Create when the payload carries more than T.
	CreateFrom func(context.Context, service.Identity, In) (T, error)
}

func registerResource[T, In any](r *Router, name string, res resource[T, In]) {
	collection := "/api/" + name + "/"
	item := collection + "{id}/"

	r.handle(http.MethodGet, collection, r.secured(res.handleList, r.Limits.Reads))
	r.handle(http.MethodPost, collection, r.secured(res.handleCreate, r.Limits.Writes))
	r.handle(http.MethodGet, item, r.secured(res.handleGet, r.Limits.Reads))
	r.handle(http.MethodPut, item, r.secured(res.handleUpdate(true), r.Limits.Writes))
	r.handle(http.MethodPatch, item, r.secured(res.handleUpdate(false), r.Limits.Writes))
	r.handle(http.MethodDelete, item, r.secured(res.handleDelete, r.Limits.Writes))
}

func (res resource[T, In]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := res.List(r.Context(), identityOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]any, 0, len(items))
	for _, it := range items {
		v, err := res.Render(it)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (res resource[T, In]) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := res.Get(r.Context(), identityOf(r), r.PathValue("id"))
	res.respond(w, r, http.StatusOK, v, err)
}

func (res resource[T, In]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := httpx.DecodeJSONLenient(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	ctx, ident := r.Context(), identityOf(r)
	if res.CreateFrom != nil {
		v, err := res.CreateFrom(ctx, ident, in)
		res.respond(w, r, http.StatusCreated, v, err)
		return
	}

	var v T
	if err := res.Bind(in, &v, true); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := res.Create(ctx, ident, v)
	res.respond(w, r, http.StatusCreated, v, err)
}

func (res resource[T, In]) handleUpdate(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := httpx.DecodeJSONLenient(w, r, &in); err != nil {
			writeBadRequest(w, err)
			return
		}
		v, err := res.Update(r.Context(), identityOf(r), r.PathValue("id"), func(dst *T) error {
			return res.Bind(in, dst, full)
		})
		res.respond(w, r, http.StatusOK, v, err)
	}
}

func (res resource[T, In]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := res.Delete(r.Context(), identityOf(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (res resource[T, In]) respond(w http.ResponseWriter, r *http.Request, code int, v T, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := res.Render(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, code, body)
}

// binder applies optional payload fields and records required ones that
// are missing.
type binder struct {
	full    bool
	missing map[string]string
}

func bind[V any](b *binder, field string, dst *V, src *V, required bool) {
	if src != nil {
		*dst = *src
		return
	}
	if b.full && required {
		if b.missing == nil {
			b.missing = map[string]string{}
		}
		b.missing[field] = service.MsgRequired
	}
}

func (b *binder) err() error {
	if len(b.missing) == 0 {
		return nil
	}
	return &service.ValidationError{Message: "invalid input", Fields: b.missing}
}

// bindChoice is bind for string-backed enumerations.
func bindChoice[V ~string](b *binder, field string, dst *V, src *string, required bool) {
	var conv *V
	if src != nil {
		v := V(*src)
		conv = &v
	}
	bind(b, field, dst, conv, required)
}
