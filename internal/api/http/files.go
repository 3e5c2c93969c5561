package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// FileHandler serves the file sub-resource of attachments and datasets.
type FileHandler struct {
	MaxBytes int64
	Upload   func(r *http.Request, ident service.Identity, id string, up service.Upload) (any, error)
	Open     func(ctx context.Context, ident service.Identity, id string) (io.ReadCloser, service.FileInfo, error)
}

// HandleUpload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the multipart field "file" and replaces any previous file. Dataset uploads also validate the first record.
//	@Tags			Files
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			resource	path		string				true	"attachment or dataset"
//	@Param			id			path		string				true	"Resource ID"
//	@Param			file		formData	file				true	"File contents"
//	@Success		200			{object}	apisdk.Attachment	"The updated resource"
//	@Failure		400			{object}	apisdk.ErrorBody	"Missing file or invalid contents"
//	@Failure		404			{object}	apisdk.ErrorBody
//	@Failure		413			{object}	apisdk.ErrorBody	"File too large"
//	@Router			/api/{resource}/{id}/file [put].
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, service.FieldError("file", "The submitted data was not a file."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		writeError(w, r, service.FieldError("file", "No file was submitted."))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	out, err := h.Upload(r, identityOf(r), r.PathValue("id"), service.Upload{
		Filename:    hdr.Filename,
		ContentType: partContentType(hdr),
		Body:        f,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func partContentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// HandleDownload godoc
//
//	@Summary	Download a file
//	@Tags		Files
//	@Security	BearerAuth
//	@Produce	octet-stream
//	@Param		resource	path		string	true	"attachment or dataset"
//	@Param		id			path		string	true	"Resource ID"
//	@Success	200			{file}		binary
//	@Header		200			{string}	Content-Disposition	"attachment; filename*=UTF-8''<name>"
//	@Failure	404			{object}	apisdk.ErrorBody	"Unknown resource or no file stored"
//	@Failure	500			{object}	apisdk.ErrorBody	"data_integrity_error"
//	@Router		/api/{resource}/{id}/file [get].
func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	body, info, err := h.Open(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", info.ContentType)
	if info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Content-Disposition", contentDisposition(info.Filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		slogx.FromContext(r.Context()).Warn("file download interrupted", "error", err)
	}
}

// contentDisposition builds an attachment header with an RFC 5987
// extended filename, so any UTF-8 name survives.
func contentDisposition(filename string) string {
	return "attachment; filename*=UTF-8''" + encodeRFC5987(filename)
}

func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// isAttrChar reports whether c is an RFC 5987 attr-char.
func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
