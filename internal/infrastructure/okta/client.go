// Package okta implements group resolution and membership listing against
// the Okta org API.
package okta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vn.io.arda/rolesync/internal/domain"
)

// MaxPageSize is the Okta limit for group and membership listings. Requested
// page sizes are clamped to [1, MaxPageSize].
const MaxPageSize = 200

// nextLinkRE extracts the continuation URL from a Link response header.
var nextLinkRE = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Client is an authenticated Okta org API client. It holds an SSWS API token
// and never retries: transient provider failures surface as errors and the
// next scheduled run picks the work back up.
type Client struct {
	baseURL  string
	token    string
	pageSize int

	httpClient *http.Client
}

// NewClient builds a client for the given org. Trailing slashes on orgURL are
// dropped; pageSize is clamped to the API limit.
func NewClient(orgURL, token string, pageSize int) *Client {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Client{
		baseURL:  strings.TrimRight(orgURL, "/"),
		token:    token,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// group is the slice of an Okta group record the client cares about.
type group struct {
	ID      string `json:"id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// groupUser is the slice of an Okta user record the client cares about.
type groupUser struct {
	Profile struct {
		Email string `json:"email"`
	} `json:"profile"`
}

// FindGroupIDByName resolves a group display name to its Okta id. It issues a
// starts-with search on profile.name first and falls back to the free-text q
// parameter, scanning each response for an exact name match. Only the first
// page of each search is inspected; groups hidden beyond it resolve as not
// found.
func (c *Client) FindGroupIDByName(ctx context.Context, name string) (string, error) {
	queries := []url.Values{
		{"search": []string{fmt.Sprintf("profile.name sw %q", name)}},
		{"q": []string{name}},
	}
	for _, query := range queries {
		query.Set("limit", strconv.Itoa(c.pageSize))
		id, err := c.findExactGroup(ctx, name, query)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("okta group %q: %w", name, domain.ErrGroupNotFound)
}

func (c *Client) findExactGroup(ctx context.Context, name string, query url.Values) (string, error) {
	resp, err := c.get(ctx, "search groups", "/api/v1/groups", query)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var groups []group
	if err := json.NewDecoder(resp.Body).Decode(&groups); err != nil {
		return "", fmt.Errorf("okta: decode group search: %w", err)
	}
	for _, g := range groups {
		if g.Profile.Name == name {
			return g.ID, nil
		}
	}
	return "", nil
}

// ListGroupMemberEmails pages through the group's members and returns their
// emails lower-cased, de-duplicated and sorted. Members without a profile
// email are skipped.
func (c *Client) ListGroupMemberEmails(ctx context.Context, groupID string) ([]string, error) {
	seen := make(map[string]struct{})
	after := ""
	for {
		query := url.Values{"limit": []string{strconv.Itoa(c.pageSize)}}
		if after != "" {
			query.Set("after", after)
		}
		resp, err := c.get(ctx, "list group users", "/api/v1/groups/"+groupID+"/users", query)
		if err != nil {
			return nil, err
		}

		var users []groupUser
		decodeErr := json.NewDecoder(resp.Body).Decode(&users)
		link := strings.Join(resp.Header.Values("Link"), ", ")
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("okta: decode group users: %w", decodeErr)
		}

		for _, u := range users {
			if u.Profile.Email == "" {
				continue
			}
			seen[strings.ToLower(u.Profile.Email)] = struct{}{}
		}

		after = nextCursor(link)
		if after == "" {
			break
		}
	}

	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails, nil
}

// get issues an authenticated GET and returns the response. Any non-success
// status is drained into a *domain.ProviderError.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("okta: %s: %w", op, err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "SSWS "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("okta: %s: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &domain.ProviderError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

// nextCursor pulls the after token out of the rel="next" continuation link.
// Pagination stops when the header is absent or carries no cursor.
func nextCursor(linkHeader string) string {
	m := nextLinkRE.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	next, err := url.Parse(m[1])
	if err != nil {
		return ""
	}
	return next.Query().Get("after")
}
