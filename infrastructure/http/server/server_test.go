package server

import (
	"bytes"
	"encoding/json"
	"flockr/observability"
	"flockr/services"
	"flockr/storage"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	store, err := storage.Open(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	platform := services.NewPlatform(store, services.PlatformConfig{
		JWTSecret:            "test-secret",
		ResetCodeTTL:         time.Hour,
		PromoteChannelOwners: true,
		MaxMessageLength:     1000,
		MessagesPageSize:     50,
		ArgonMemoryKB:        1024,
		ArgonIterations:      1,
	}, services.NewLogMailer(log), log)
	collector, err := observability.NewCollector(platform, log)
	require.NoError(t, err)

	ts := httptest.NewServer(NewServer(platform, collector, log).Handler())
	t.Cleanup(ts.Close)
	return ts
}

// call sends body as JSON (or nothing for GET) and decodes the answer.
func call(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type authBody struct {
	UserID int    `json:"u_id"`
	Token  string `json:"token"`
}

func register(t *testing.T, ts *httptest.Server, first string) authBody {
	t.Helper()
	var out authBody
	status := call(t, ts, http.MethodPost, "/auth/register", map[string]any{
		"email":      first + "@example.com",
		"password":   "password1",
		"name_first": first,
		"name_last":  "Smith",
	}, &out)
	require.Equal(t, http.StatusOK, status)
	return out
}

func TestServer_Echo(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	var out map[string]any
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/echo?data=hi", nil, &out))
	req.Equal("hi", out["data"])

	var failure errorResponse
	req.Equal(http.StatusBadRequest, call(t, ts, http.MethodGet, "/echo?data=echo", nil, &failure))
	req.Equal(400, failure.Code)
	req.Equal("System Error", failure.Name)
}

func TestServer_ChannelFlow(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	a := register(t, ts, "alice")
	b := register(t, ts, "bob")
	req.Equal(0, a.UserID)
	req.Equal(1, b.UserID)

	var created struct {
		ChannelID int `json:"channel_id"`
	}
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/channels/create",
		map[string]any{"token": a.Token, "name": "general", "is_public": true}, &created))

	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/channel/invite",
		map[string]any{"token": a.Token, "channel_id": created.ChannelID, "u_id": b.UserID}, nil))
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/channel/addowner",
		map[string]any{"token": a.Token, "channel_id": created.ChannelID, "u_id": b.UserID}, nil))
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/channel/leave",
		map[string]any{"token": a.Token, "channel_id": created.ChannelID}, nil))

	var details detailsResponse
	path := fmt.Sprintf("/channel/details?token=%s&channel_id=%d", b.Token, created.ChannelID)
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, path, nil, &details))
	req.Equal("general", details.Name)
	req.Equal([]memberResponse{{UserID: 1, FirstName: "bob", LastName: "Smith"}}, details.OwnerMembers)
	req.Equal(details.OwnerMembers, details.AllMembers)

	carol := register(t, ts, "carol")
	var failure errorResponse
	path = fmt.Sprintf("/channel/details?token=%s&channel_id=%d", carol.Token, created.ChannelID)
	req.Equal(http.StatusBadRequest, call(t, ts, http.MethodGet, path, nil, &failure))
	req.Equal("user is not a member of this channel", failure.Message)

	var lists channelsResponse
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/channels/listall?token="+carol.Token, nil, &lists))
	req.Len(lists.Channels, 1)
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/channels/list?token="+carol.Token, nil, &lists))
	req.Empty(lists.Channels)
}

func TestServer_MessagesAndSearch(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	a := register(t, ts, "alice")

	var created channelIDResponse
	call(t, ts, http.MethodPost, "/channels/create", map[string]any{"token": a.Token, "name": "general", "is_public": true}, &created)

	var sent messageIDResponse
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/message/send",
		map[string]any{"token": a.Token, "channel_id": created.ChannelID, "message": "Hello there"}, &sent))
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/message/react",
		map[string]any{"token": a.Token, "message_id": sent.MessageID, "react_id": 1}, nil))
	req.Equal(http.StatusOK, call(t, ts, http.MethodPut, "/message/edit",
		map[string]any{"token": a.Token, "message_id": sent.MessageID, "message": "Hello world"}, nil))

	var page messagesResponse
	path := fmt.Sprintf("/channel/messages?token=%s&channel_id=%d&start=0", a.Token, created.ChannelID)
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, path, nil, &page))
	req.Equal(-1, page.End)
	req.Len(page.Messages, 1)
	req.Equal("Hello world", page.Messages[0].Message)
	req.True(page.Messages[0].Reacts[0].IsThisUserReacted)

	var found searchResponse
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/search?token="+a.Token+"&query_str=WORLD", nil, &found))
	req.Len(found.Messages, 1)

	req.Equal(http.StatusOK, call(t, ts, http.MethodDelete, "/message/remove",
		map[string]any{"token": a.Token, "message_id": sent.MessageID}, nil))
	req.Equal(http.StatusBadRequest, call(t, ts, http.MethodDelete, "/message/remove",
		map[string]any{"token": a.Token, "message_id": sent.MessageID}, nil))
}

func TestServer_AuthAndUsers(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	a := register(t, ts, "alice")

	var logout logoutResponse
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/auth/logout", map[string]any{"token": a.Token}, &logout))
	req.True(logout.IsSuccess)
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/auth/logout", map[string]any{"token": a.Token}, &logout))
	req.False(logout.IsSuccess)

	var login authBody
	req.Equal(http.StatusOK, call(t, ts, http.MethodPost, "/auth/login",
		map[string]any{"email": "alice@example.com", "password": "password1"}, &login))
	req.Equal(a.UserID, login.UserID)

	req.Equal(http.StatusOK, call(t, ts, http.MethodPut, "/user/profile/sethandle",
		map[string]any{"token": login.Token, "handle_str": "queenalice"}, nil))

	var profile profileResponse
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, fmt.Sprintf("/user/profile?token=%s&u_id=0", login.Token), nil, &profile))
	req.Equal("queenalice", profile.User.Handle)

	var users usersResponse
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/users/all?token="+login.Token, nil, &users))
	req.Len(users.Users, 1)

	req.Equal(http.StatusBadRequest, call(t, ts, http.MethodPost, "/admin/userpermission/change",
		map[string]any{"token": login.Token, "u_id": 0, "permission_id": 3}, nil))
	req.Equal(http.StatusBadRequest, call(t, ts, http.MethodGet, "/user/profile?token=x&u_id=abc", nil, nil))
}

func TestServer_ClearAndStats(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	register(t, ts, "alice")

	var stats observability.Stats
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/debug/stats", nil, &stats))
	req.Equal(1, stats.Users)
	req.Equal(1, stats.Sessions)

	req.Equal(http.StatusOK, call(t, ts, http.MethodDelete, "/clear", nil, nil))
	req.Equal(http.StatusOK, call(t, ts, http.MethodGet, "/debug/stats", nil, &stats))
	req.Zero(stats.Users)
	req.Equal(0, register(t, ts, "bob").UserID)
}

func TestServer_BearerHeader(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	a := register(t, ts, "alice")

	r, err := http.NewRequest(http.MethodGet, ts.URL+"/channels/list", nil)
	req.NoError(err)
	r.Header.Set("Authorization", "Bearer "+a.Token)
	resp, err := ts.Client().Do(r)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
}
