package okta_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vn.io.arda/rolesync/internal/domain"
	"vn.io.arda/rolesync/internal/infrastructure/okta"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func oktaGroup(id, name string) map[string]any {
	return map[string]any{"id": id, "profile": map[string]any{"name": name}}
}

func oktaUser(email string) map[string]any {
	profile := map[string]any{}
	if email != "" {
		profile["email"] = email
	}
	return map[string]any{"profile": profile}
}

func TestFindGroupIDByNameExactMatchOnPrefixSearch(t *testing.T) {
	var reqs []*url.URL
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.URL)
		auths = append(auths, r.Header.Get("Authorization"))
		writeJSON(w, []map[string]any{
			oktaGroup("g-staging", "db-admins-staging"),
			oktaGroup("g1", "db-admins"),
		})
	}))
	defer srv.Close()

	client := okta.NewClient(srv.URL, "test-token", 200)
	id, err := client.FindGroupIDByName(context.Background(), "db-admins")

	require.NoError(t, err)
	assert.Equal(t, "g1", id)
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/v1/groups", reqs[0].Path)
	assert.Equal(t, `profile.name sw "db-admins"`, reqs[0].Query().Get("search"))
	assert.Equal(t, "200", reqs[0].Query().Get("limit"))
	assert.Equal(t, []string{"SSWS test-token"}, auths)
}

func TestFindGroupIDByNameFallsBackToFreeTextQuery(t *testing.T) {
	var reqs []*url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.URL)
		if r.URL.Query().Get("search") != "" {
			// Prefix search finds only near misses.
			writeJSON(w, []map[string]any{oktaGroup("g-staging", "db-admins-staging")})
			return
		}
		writeJSON(w, []map[string]any{oktaGroup("g1", "db-admins")})
	}))
	defer srv.Close()

	client := okta.NewClient(srv.URL, "test-token", 200)
	id, err := client.FindGroupIDByName(context.Background(), "db-admins")

	require.NoError(t, err)
	assert.Equal(t, "g1", id)
	require.Len(t, reqs, 2)
	assert.Equal(t, "db-admins", reqs[1].Query().Get("q"))
}

func TestFindGroupIDByNameNotFound(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, []map[string]any{oktaGroup("g-staging", "db-admins-staging")})
	}))
	defer srv.Close()

	client := okta.NewClient(srv.URL, "test-token", 200)
	_, err := client.FindGroupIDByName(context.Background(), "db-admins")

	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	assert.Equal(t, 2, calls)
}

func TestFindGroupIDByNameProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid session", http.StatusForbidden)
	}))
	defer srv.Close()

	client := okta.NewClient(srv.URL, "bad-token", 200)
	_, err := client.FindGroupIDByName(context.Background(), "db-admins")

	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusForbidden, provErr.StatusCode)
	assert.Contains(t, provErr.Detail, "invalid session")
}

func TestListGroupMemberEmailsFollowsNextLinks(t *testing.T) {
	var srv *httptest.Server
	var afters []string
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after")
		afters = append(afters, after)
		switch after {
		case "":
			w.Header().Add("Link", fmt.Sprintf(`<%s/api/v1/groups/g1/users?limit=2>; rel="self"`, srv.URL))
			w.Header().Add("Link", fmt.Sprintf(`<%s/api/v1/groups/g1/users?after=cursor1&limit=2>; rel="next"`, srv.URL))
			writeJSON(w, []map[string]any{
				oktaUser("Zoe@Example.com"),
				oktaUser("alice@example.com"),
			})
		default:
			writeJSON(w, []map[string]any{
				oktaUser("ALICE@example.com"),
				oktaUser(""),
				oktaUser("bob@example.com"),
			})
		}
	}))
	defer srv.Close()

	client := okta.NewClient(srv.URL, "test-token", 2)
	emails, err := client.ListGroupMemberEmails(context.Background(), "g1")

	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "zoe@example.com"}, emails)
	assert.Equal(t, []string{"", "cursor1"}, afters)
}

func TestListGroupMemberEmailsEmptyGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{})
	}))
	defer srv.Close()

	client := okta.NewClient(srv.URL, "test-token", 200)
	emails, err := client.ListGroupMemberEmails(context.Background(), "g1")

	require.NoError(t, err)
	assert.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestNewClientClampsPageSizeAndTrimsOrgURL(t *testing.T) {
	var limits []string
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limits = append(limits, r.URL.Query().Get("limit"))
		paths = append(paths, r.URL.Path)
		writeJSON(w, []map[string]any{})
	}))
	defer srv.Close()

	oversized := okta.NewClient(srv.URL+"///", "test-token", 5000)
	_, err := oversized.ListGroupMemberEmails(context.Background(), "g1")
	require.NoError(t, err)

	undersized := okta.NewClient(srv.URL, "test-token", 0)
	_, err = undersized.ListGroupMemberEmails(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, []string{"200", "1"}, limits)
	assert.Equal(t, []string{"/api/v1/groups/g1/users", "/api/v1/groups/g1/users"}, paths)
}
