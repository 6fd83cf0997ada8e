package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/yama/internal/common"
	"github.com/google/uuid"
)

// Multipart is a multipart/form-data request body. The content type,
// boundary included, is set by the client.
type Multipart struct {
	Fields []Field
	Files  []FilePart
}

type Field struct {
	Name  string
	Value string
}

type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

func (m *Multipart) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, "", fmt.Errorf("write part %s: %w", f.Field, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// encodeBody serializes a request body once so a retry resends the same
// bytes. A nil body sends nothing.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		if b == nil {
			return nil, "", nil
		}
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return data, "application/json", nil
	}
}

// do runs one logical request: send, and on a 401 while a refresh token is
// held, refresh once and resend once. The returned response is 2xx and its
// body belongs to the caller.
func (c *Client) do(ctx context.Context, method string, target Target, body any) (*http.Response, error) {
	u, err := target.Resolve(c.base)
	if err != nil {
		return nil, err
	}

	payload, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	log := c.logger.With("request_id", reqID, "method", method, "url", u.String())

	sent := c.store.Tokens().AccessToken
	resp, err := c.send(ctx, method, u, payload, contentType, reqID, sent)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "response received", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		if pair := c.store.Tokens(); pair.RefreshToken != "" {
			drain(resp)

			access := pair.AccessToken
			if access == sent || access == "" {
				log.Info(ctx, "access token rejected, refreshing")
				access, err = c.refresh(ctx, pair.RefreshToken)
				if err != nil {
					log.Warn(ctx, "token refresh failed", "error", err)
					return nil, err
				}
			}

			resp, err = c.send(ctx, method, u, payload, contentType, reqID, access)
			if err != nil {
				return nil, err
			}
			log.Debug(ctx, "retry response received", "status", resp.StatusCode)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, newAPIError(KindRequest, resp.StatusCode, data)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method string, u *url.URL, payload []byte, contentType, reqID, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(common.RequestIDHeaderName, reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u.Redacted(), err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// decode reads a successful response into out. A nil out or an empty body
// decodes nothing. A *[]byte out receives non-JSON bodies verbatim.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if raw, ok := out.(*[]byte); ok && !isJSON(resp.Header.Get("Content-Type")) {
		*raw = data
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetResponse performs an authenticated GET and returns the raw response.
// The caller closes its body.
func (c *Client) GetResponse(ctx context.Context, target Target) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, target, nil)
}

func (c *Client) Get(ctx context.Context, target Target, out any) error {
	resp, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// Post sends body as JSON, or as multipart/form-data when it is a
// *Multipart.
func (c *Client) Post(ctx context.Context, target Target, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, target, body)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) Put(ctx context.Context, target Target, body, out any) error {
	resp, err := c.do(ctx, http.MethodPut, target, body)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) Delete(ctx context.Context, target Target, out any) error {
	resp, err := c.do(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}
	return decode(resp, out)
}
