package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "tradevault/internal/errors"
)

// streamFrame is one decoded data frame from a streaming endpoint.
type streamFrame struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Stream calls a streaming AI endpoint and delivers text chunks to onChunk
// as they arrive. It returns nil after the explicit end-of-stream marker (or
// a clean connection close), apperrors.ErrUpgradeRequired when the endpoint
// is premium-gated, and a StreamError when the server sends an error frame.
//
// The wire format is SSE-style framing: "data: <json>" lines where the json
// carries a text fragment, terminated by a literal "data: [DONE]".
//
// Unlike the REST calls there is no overall deadline on the body read; a
// stream lives until its end marker, an error, or ctx cancellation.
func (c *Client) Stream(ctx context.Context, endpoint string, payload interface{}, onChunk func(string)) error {
	req := c.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetBody(payload)
	if token := c.tokens.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.Post(endpoint)
	if err != nil {
		return c.mapTransportError(err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		// Error responses are a plain JSON envelope, not a stream.
		var env envelope
		dec := json.NewDecoder(body)
		_ = dec.Decode(&env)
		switch {
		case resp.StatusCode() == http.StatusUnauthorized:
			c.sessionExpired()
			return apperrors.ErrSessionExpired
		case resp.StatusCode() == http.StatusForbidden && env.Upgrade:
			return apperrors.ErrUpgradeRequired
		default:
			msg := env.Error
			if msg == "" {
				msg = "AI request failed"
			}
			return apperrors.NewAPIError(resp.StatusCode(), msg, nil)
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		raw := strings.TrimSpace(line[len("data: "):])
		if raw == "[DONE]" {
			return nil
		}
		var frame streamFrame
		if err := json.Unmarshal([]byte(raw), &frame); err != nil {
			continue // malformed frames are skipped, not fatal
		}
		if frame.Error != "" {
			return &apperrors.StreamError{Message: frame.Error}
		}
		if frame.Text != "" {
			onChunk(frame.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return c.mapTransportError(err)
	}
	// Connection closed without the end marker; treat as a clean finish.
	return nil
}
