package apisdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
)

// File is a downloaded attachment or dataset file.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadAttachmentFile stores the file for an attachment and returns the
// updated attachment.
func (c *Client) UploadAttachmentFile(ctx context.Context, id, filename string, r io.Reader) (*Attachment, error) {
	var out Attachment
	if err := c.upload(ctx, "/api/attachment/"+url.PathEscape(id)+"/file", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDataSetFile stores and validates the file for a dataset.
func (c *Client) UploadDataSetFile(ctx context.Context, id, filename string, r io.Reader) (*DataSet, error) {
	var out DataSet
	if err := c.upload(ctx, "/api/dataset/"+url.PathEscape(id)+"/file", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DownloadAttachmentFile(ctx context.Context, id string) (*File, error) {
	return c.download(ctx, "/api/attachment/"+url.PathEscape(id)+"/file")
}

func (c *Client) DownloadDataSetFile(ctx context.Context, id string) (*File, error) {
	return c.download(ctx, "/api/dataset/"+url.PathEscape(id)+"/file")
}

func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, true, http.MethodPut, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, out, http.StatusOK)
}

func (c *Client) download(ctx context.Context, path string) (*File, error) {
	req, err := c.newRequest(ctx, true, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, b)
	}

	f := &File{ContentType: resp.Header.Get("Content-Type"), Data: b}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		// mime decodes filename* (RFC 2231) into "filename".
		f.Filename = params["filename"]
	}
	return f, nil
}
