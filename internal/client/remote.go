// Package client implements the recipient/sender side of the HTTP
// transport: pushing encrypted payloads to a burner server and pulling
// them back exactly once.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/notes"
)

// Remote talks to a burner server. It maps the transport contract onto
// the store error taxonomy: 404 becomes ErrNotFound, 410 becomes
// ErrExpired and connection or server failures become
// ErrStorageUnavailable. The core never retries; retry policy belongs to
// whatever drives it.
type Remote struct {
	baseURL string
	http    *http.Client
}

var _ notes.Remote = (*Remote)(nil)

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type storeRequest struct {
	Data      string `json:"data"`
	CreatedMS int64  `json:"created,omitempty"`
	TTLMS     int64  `json:"ttl_ms"`
}

type storeResponse struct {
	ShortID string `json:"short_id"`
}

type fetchResponse struct {
	Data      string `json:"data"`
	CreatedMS int64  `json:"created"`
	TTLMS     int64  `json:"ttl_ms"`
}

func (r *Remote) Push(ctx context.Context, payload []byte, created time.Time, ttl time.Duration) (string, error) {
	body, err := json.Marshal(storeRequest{
		Data:      base64.StdEncoding.EncodeToString(payload),
		CreatedMS: created.UnixMilli(),
		TTLMS:     ttl.Milliseconds(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/notes", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: store returned %d", common.ErrStorageUnavailable, resp.StatusCode)
	}

	var out storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if out.ShortID == "" {
		return "", fmt.Errorf("%w: empty short id", common.ErrStorageUnavailable)
	}
	return out.ShortID, nil
}

func (r *Remote) Pull(ctx context.Context, shortID string) ([]byte, time.Time, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/notes/"+shortID, nil)
	if err != nil {
		return nil, time.Time{}, 0, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, time.Time{}, 0, common.ErrNotFound
	case http.StatusGone:
		return nil, time.Time{}, 0, common.ErrExpired
	default:
		return nil, time.Time{}, 0, fmt.Errorf("%w: fetch returned %d", common.ErrStorageUnavailable, resp.StatusCode)
	}

	var out fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	payload, err := base64.StdEncoding.DecodeString(out.Data)
	if err != nil {
		return nil, time.Time{}, 0, fmt.Errorf("%w: bad payload encoding", common.ErrStorageUnavailable)
	}
	return payload, time.UnixMilli(out.CreatedMS), time.Duration(out.TTLMS) * time.Millisecond, nil
}
