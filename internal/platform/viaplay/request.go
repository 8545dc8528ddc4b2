package viaplay

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
)

// Hyperlinks sometimes carry URI template leftovers, e.g. ".../serier{?dtg}".
var templatePattern = regexp.MustCompile(`\{.+?\}`)

// ParseURL removes every {...} template fragment from raw.
func ParseURL(raw string) string {
	return templatePattern.ReplaceAllString(raw, "")
}

// MakeRequest issues req with the active profile injected. When the service
// answers with a ServiceError the session is validated and the request is
// re-issued exactly once; a second failure is returned to the caller.
func (c *Client) MakeRequest(ctx context.Context, req Request) (*Response, error) {
	params := make(map[string]string, len(req.Params)+1)
	maps.Copy(params, req.Params)
	if c.cfg.ProfileID != "" {
		params["profileId"] = c.cfg.ProfileID
	}
	req.Params = params

	resp, err := c.do(ctx, req)
	if err == nil || !IsServiceError(err) {
		return resp, err
	}

	c.log.Debug().Err(err).Str(vlog.FieldURL, req.URL).Msg("service error, validating session before retry")
	c.setState(StateExpired)
	if err := c.ValidateSession(ctx); err != nil {
		return nil, err
	}

	return c.do(ctx, req)
}

// Get is MakeRequest for a plain GET.
func (c *Client) Get(ctx context.Context, rawURL string, params map[string]string) (*Response, error) {
	return c.MakeRequest(ctx, Request{URL: rawURL, Method: MethodGet, Params: params})
}

// do performs a single round trip. Transport errors are returned untouched;
// the cookie file is saved after any round trip that produced a response.
func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	target := ParseURL(req.URL)
	if target != req.URL && c.cfg.Debug {
		c.log.Debug().Str(vlog.FieldURL, req.URL).Msg("unparsed url")
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", target, err)
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for k, v := range req.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	method := req.Method
	if method == "" {
		method = MethodGet
	}
	switch method {
	case MethodGet:
	case MethodPut, MethodPost:
		form := url.Values{}
		for k, v := range req.Payload {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(string(method)), u.String(), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("User-Agent", UserAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if c.cfg.Debug {
		c.log.Debug().
			Str(vlog.FieldURL, u.String()).
			Str(vlog.FieldMethod, string(method)).
			Interface(vlog.FieldParams, req.Params).
			Interface(vlog.FieldPayload, req.Payload).
			Interface(vlog.FieldHeaders, req.Headers).
			Msg("request")
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if c.cfg.Debug {
		c.log.Debug().
			Int(vlog.FieldStatus, httpResp.StatusCode).
			Bytes(vlog.FieldBody, raw).
			Msg("response")
	}

	if err := c.store.SaveSession(c.session); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist cookies")
	}

	return ParseResponse(raw)
}
