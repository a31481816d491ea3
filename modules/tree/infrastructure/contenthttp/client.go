// Package contenthttp implements the content collaborator over the external
// content service's JSON API.
package contenthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/routenest/routenest/modules/tree/domain/accesscontrol"
	"github.com/routenest/routenest/modules/tree/domain/content"
)

type principalDTO struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

type authorizationSetDTO struct {
	Guest  bool     `json:"guest"`
	Users  []string `json:"users"`
	Roles  []string `json:"roles"`
	Groups []string `json:"groups"`
}

type accessControlDTO struct {
	Owner string                         `json:"owner"`
	Sets  map[string]authorizationSetDTO `json:"sets"`
}

type contentDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Owner string    `json:"owner"`
}

func toPrincipalDTO(p accesscontrol.Principal) principalDTO {
	return principalDTO{UserID: p.UserID, Roles: p.Roles, Groups: p.Groups}
}

func toAccessControlDTO(acl *accesscontrol.AccessControl) accessControlDTO {
	sets := make(map[string]authorizationSetDTO, len(accesscontrol.Permissions()))
	for _, p := range accesscontrol.Permissions() {
		s := acl.Set(p)
		sets[p.FieldKey()] = authorizationSetDTO{
			Guest:  s.Guest(),
			Users:  s.Users(),
			Roles:  s.Roles(),
			Groups: s.Groups(),
		}
	}
	return accessControlDTO{Owner: acl.Owner(), Sets: sets}
}

// Client talks to the content service. Mutations report (false, nil) when the
// service answers 403: the content exists but the principal may not touch it,
// which the tree treats as a loggable non-event.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid content service url %q", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody, out any) (int, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return 0, errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "content service request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to unmarshal response")
	}
	return resp.StatusCode, nil
}

func contentPath(contentID uuid.UUID) string {
	return fmt.Sprintf("/contents/%s", contentID)
}

func (c *Client) FindByID(ctx context.Context, contentID uuid.UUID, requesterID string) (*content.Content, error) {
	query := url.Values{}
	if requesterID != "" {
		query.Set("requesterId", requesterID)
	}
	var dto contentDTO
	status, err := c.doJSON(ctx, http.MethodGet, contentPath(contentID), query, nil, &dto)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("content %s not readable: status %d", contentID, status)
	}
	return &content.Content{ID: dto.ID, Name: dto.Name, Owner: dto.Owner}, nil
}

// mutationResult maps the service's answer onto the Store contract: accepted,
// rejected for this principal, or failed.
func mutationResult(contentID uuid.UUID, status int) (bool, error) {
	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status == http.StatusForbidden:
		return false, nil
	default:
		return false, errors.Errorf("content %s mutation failed: status %d", contentID, status)
	}
}

func (c *Client) UpdateName(ctx context.Context, contentID uuid.UUID, name string, principal accesscontrol.Principal) (bool, error) {
	body := struct {
		Name      string       `json:"name"`
		Principal principalDTO `json:"principal"`
	}{Name: name, Principal: toPrincipalDTO(principal)}

	status, err := c.doJSON(ctx, http.MethodPatch, contentPath(contentID)+"/name", nil, body, nil)
	if err != nil {
		return false, err
	}
	return mutationResult(contentID, status)
}

func (c *Client) UpdateAccessControl(ctx context.Context, contentID uuid.UUID, acl *accesscontrol.AccessControl, principal accesscontrol.Principal) (bool, error) {
	body := struct {
		AccessControl accessControlDTO `json:"accessControl"`
		Principal     principalDTO     `json:"principal"`
	}{AccessControl: toAccessControlDTO(acl), Principal: toPrincipalDTO(principal)}

	status, err := c.doJSON(ctx, http.MethodPut, contentPath(contentID)+"/access-control", nil, body, nil)
	if err != nil {
		return false, err
	}
	return mutationResult(contentID, status)
}

func (c *Client) RemoveByID(ctx context.Context, contentID uuid.UUID, principal accesscontrol.Principal) (bool, error) {
	body := struct {
		Principal principalDTO `json:"principal"`
	}{Principal: toPrincipalDTO(principal)}

	status, err := c.doJSON(ctx, http.MethodDelete, contentPath(contentID), nil, body, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		// Already gone; removal is idempotent.
		return true, nil
	}
	return mutationResult(contentID, status)
}
