// Package rest implements the remote API contract over a table-oriented
// JSON backend with bearer-token authentication.
package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kidsync/remote"
)

// Client handles HTTP communication with the kidsync backend
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new REST client for the given base URL and token
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// createChildRequest is the request body for creating a child row.
// local_child_id is sent so the backend can enforce its unique index
// on (parent_id, local_child_id) and dedupe retried creates.
type createChildRequest struct {
	OwnerID      string `json:"parent_id"`
	LocalChildID string `json:"local_child_id"`
	Name         string `json:"name"`
}

// softDeleteRequest sets the deleted_at marker on a child row
type softDeleteRequest struct {
	OwnerID   string    `json:"parent_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// statusError drains the response body into a typed RemoteError
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return remote.NewRemoteError(op, resp.StatusCode, http.StatusText(resp.StatusCode)).
		WithBody(string(body))
}

// CreateChild inserts a child row and returns the server-generated id
func (c *Client) CreateChild(ownerID, localChildID, name string) (string, error) {
	resp, err := c.doRequest("POST", "/children", createChildRequest{
		OwnerID:      ownerID,
		LocalChildID: localChildID,
		Name:         name,
	})
	if err != nil {
		return "", remote.NewRemoteError("CreateChild", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 200 means the backend deduped against an existing row
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", statusError("CreateChild", resp)
	}

	var child remote.RemoteChild
	if err := json.NewDecoder(resp.Body).Decode(&child); err != nil {
		return "", remote.NewRemoteError("CreateChild", 0, "failed to decode response").WithError(err)
	}

	return child.ID, nil
}

// ListChildren returns the owner's non-soft-deleted children
func (c *Client) ListChildren(ownerID string) ([]remote.RemoteChild, error) {
	endpoint := "/children?parent_id=" + url.QueryEscape(ownerID)
	resp, err := c.doRequest("GET", endpoint, nil)
	if err != nil {
		return nil, remote.NewRemoteError("ListChildren", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("ListChildren", resp)
	}

	var children []remote.RemoteChild
	if err := json.NewDecoder(resp.Body).Decode(&children); err != nil {
		return nil, remote.NewRemoteError("ListChildren", 0, "failed to decode response").WithError(err)
	}

	return children, nil
}

// SoftDeleteChild sets deleted_at on a child row, scoped to the owner
func (c *Client) SoftDeleteChild(ownerID, remoteChildID string) error {
	resp, err := c.doRequest("PATCH", "/children/"+url.PathEscape(remoteChildID), softDeleteRequest{
		OwnerID:   ownerID,
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		return remote.NewRemoteError("SoftDeleteChild", 0, err.Error()).WithError(err).WithChildID(remoteChildID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("SoftDeleteChild", resp)
	}

	return nil
}

// UpsertProgress writes a progress row keyed by its id
func (c *Client) UpsertProgress(ownerID string, rec remote.ProgressRecord) error {
	rec.OwnerID = ownerID
	resp, err := c.doRequest("PUT", "/progress/"+url.PathEscape(rec.ID), rec)
	if err != nil {
		return remote.NewRemoteError("UpsertProgress", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return statusError("UpsertProgress", resp)
	}

	return nil
}

// InsertEvent appends a telemetry event
func (c *Client) InsertEvent(ownerID string, rec remote.EventRecord) error {
	rec.OwnerID = ownerID
	resp, err := c.doRequest("POST", "/events", rec)
	if err != nil {
		return remote.NewRemoteError("InsertEvent", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return statusError("InsertEvent", resp)
	}

	return nil
}

// Ping checks backend reachability with a lightweight request
func (c *Client) Ping() error {
	resp, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return remote.NewRemoteError("Ping", 0, err.Error()).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError("Ping", resp)
	}

	return nil
}
