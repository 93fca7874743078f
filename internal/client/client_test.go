package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"instaclone/internal/domain"
	apihttp "instaclone/internal/http"
	"instaclone/internal/media"
	"instaclone/internal/repository/repotest"
	"instaclone/internal/service"
)

func newAPIServer(t *testing.T) (*httptest.Server, *repotest.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := repotest.New()
	uploader := media.NewDisabledUploader("uploads disabled in tests")

	sessions := service.NewSessionService("test-secret", time.Hour)
	users := service.NewUserService(logger, store.Users, store.Posts, uploader, nil, 1<<20)
	relations := service.NewRelationshipService(logger, store.Users, store.Follows)
	posts := service.NewPostService(logger, store.Posts, uploader, 1<<20)
	messages := service.NewMessageService(store.Users, store.Messages)

	router := apihttp.NewRouter(logger, apihttp.SessionAuthMiddleware(sessions, "token"), apihttp.Handlers{
		Health:   apihttp.NewHealthHandler(logger, nil),
		Users:    apihttp.NewUserHandler(logger, users, relations, sessions, apihttp.CookieConfig{Name: "token"}),
		Posts:    apihttp.NewPostHandler(logger, posts),
		Messages: apihttp.NewMessageHandler(logger, messages),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

// setup registra alice y bob, loguea a alice y devuelve el id de bob.
func setup(t *testing.T) (*Client, *repotest.Store, string) {
	t.Helper()
	srv, store := newAPIServer(t)
	c, err := New(srv.URL+"/api/v1", nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "alice", "alice@example.com", "alicepw"))
	require.NoError(t, c.Register(ctx, "bob", "bob@example.com", "bobpw"))
	_, err = c.Login(ctx, "alice@example.com", "alicepw")
	require.NoError(t, err)

	suggested, err := c.Suggested(ctx)
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	return c, store, suggested[0].ID
}

func TestClient_LoginFillsCache(t *testing.T) {
	c, _, _ := setup(t)

	me, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", me.Username)
	assert.Empty(t, me.PasswordHash)

	me.Following = append(me.Following, "tampered")
	again, _ := c.Current()
	assert.NotContains(t, again.Following, "tampered")
}

func TestClient_ToggleFollowAdoptsUpdatedUser(t *testing.T) {
	c, _, bobID := setup(t)
	ctx := context.Background()

	action, err := c.ToggleFollow(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionFollowed, action)
	me, _ := c.Current()
	assert.Equal(t, []string{bobID}, me.Following)

	bob, err := c.Profile(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, []string{me.ID}, bob.Followers)

	action, err = c.ToggleFollow(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionUnfollowed, action)
	me, _ = c.Current()
	assert.Empty(t, me.Following)
}

func TestClient_ToggleFollowRollsBackOnServerError(t *testing.T) {
	c, store, bobID := setup(t)
	before, _ := c.Current()

	store.Fail("follows.Toggle", errors.New("deadlock detected"))
	_, err := c.ToggleFollow(context.Background(), bobID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	after, _ := c.Current()
	assert.Equal(t, before, after)
	assert.Equal(t, 0, store.FollowEdges())
}

func TestClient_ToggleFollowRollsBackOnNotFound(t *testing.T) {
	c, _, _ := setup(t)
	before, _ := c.Current()

	_, err := c.ToggleFollow(context.Background(), "ghost")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "User not found.", apiErr.Message)

	after, _ := c.Current()
	assert.Equal(t, before, after)
}

func TestClient_ToggleFollowRollsBackOnSuccessFalse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"a","username":"alice","followers":[],"following":["x"]}}`))
	})
	mux.HandleFunc("/user/followorunfollow/b", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"try later"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = c.ToggleFollow(context.Background(), "b")
	require.Error(t, err)
	me, _ := c.Current()
	assert.Equal(t, []string{"x"}, me.Following)
}

func TestClient_ToggleFollowRollsBackOnTransportError(t *testing.T) {
	srv, _ := newAPIServer(t)
	c, err := New(srv.URL+"/api/v1", nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "alice", "alice@example.com", "pw"))
	_, err = c.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	before, _ := c.Current()

	srv.Close()
	_, err = c.ToggleFollow(ctx, "someone")
	require.Error(t, err)
	after, _ := c.Current()
	assert.Equal(t, before, after)
}

func TestClient_LogoutClearsCache(t *testing.T) {
	c, _, bobID := setup(t)
	ctx := context.Background()

	require.NoError(t, c.Logout(ctx))
	_, ok := c.Current()
	assert.False(t, ok)

	_, err := c.ToggleFollow(ctx, bobID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Suggested(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_EditProfileUpdatesCache(t *testing.T) {
	c, _, _ := setup(t)

	profile, err := c.EditProfile(context.Background(), EditProfileInput{Bio: "hola", Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, "hola", profile.Bio)

	me, _ := c.Current()
	assert.Equal(t, "hola", me.Bio)
	assert.Equal(t, domain.GenderFemale, me.Gender)
}

func TestClient_LoginErrors(t *testing.T) {
	srv, _ := newAPIServer(t)
	c, err := New(srv.URL+"/api/v1", nil)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "ghost@example.com", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password.", apiErr.Message)
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	_, err := New("not a url", nil)
	require.Error(t, err)
}

func TestSessionCache_ConcurrentAccess(t *testing.T) {
	cache := NewSessionCache()
	cache.Set(domain.User{ID: "a", Following: []string{}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if userID, was, ok := cache.flipFollowing("b"); ok {
				cache.setFollowing(userID, "b", was)
			}
		}()
		go func() {
			defer wg.Done()
			u, _ := cache.Get()
			_ = len(u.Following)
		}()
	}
	wg.Wait()

	u, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "a", u.ID)
}

func TestSessionCache_RevertIgnoresOtherUser(t *testing.T) {
	cache := NewSessionCache()
	cache.Set(domain.User{ID: "a", Following: []string{"x"}})
	userID, was, ok := cache.flipFollowing("y")
	require.True(t, ok)
	assert.Equal(t, "a", userID)
	assert.False(t, was)

	cache.Set(domain.User{ID: "b"})
	cache.setFollowing(userID, "y", was)
	u, _ := cache.Get()
	assert.Equal(t, "b", u.ID)
}

func loginFake(t *testing.T, mux *http.ServeMux, following string) *Client {
	t.Helper()
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"a","username":"alice","followers":[],"following":` + following + `}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	return c
}

func TestClient_FailedToggleKeepsConcurrentConfirmedFollow(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/user/followorunfollow/t1", func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
	})
	mux.HandleFunc("/user/followorunfollow/t2", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Followed successfully.","action":"followed","updatedUser":{"id":"a","username":"alice","followers":[],"following":["t2"]}}`))
	})
	c := loginFake(t, mux, `[]`)
	ctx := context.Background()

	t1Err := make(chan error, 1)
	go func() {
		_, err := c.ToggleFollow(ctx, "t1")
		t1Err <- err
	}()
	<-entered

	action, err := c.ToggleFollow(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionFollowed, action)
	me, _ := c.Current()
	require.Contains(t, me.Following, "t2")

	close(release)
	require.Error(t, <-t1Err)

	me, _ = c.Current()
	assert.Equal(t, []string{"t2"}, me.Following)
}

func TestClient_ToggleWithoutUpdatedUserFollowsAction(t *testing.T) {
	cases := []struct {
		name      string
		following string
		action    domain.FollowAction
		want      []string
	}{
		// el cache creia que no seguia a b, pero el servidor dice que lo dejo de seguir
		{name: "stale unfollow", following: `[]`, action: domain.ActionUnfollowed, want: []string{}},
		{name: "stale follow", following: `["b"]`, action: domain.ActionFollowed, want: []string{"b"}},
		{name: "fresh follow", following: `["x"]`, action: domain.ActionFollowed, want: []string{"x", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/user/followorunfollow/b", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success":true,"message":"ok","action":"` + string(tc.action) + `","updatedUser":null}`))
			})
			c := loginFake(t, mux, tc.following)

			action, err := c.ToggleFollow(context.Background(), "b")
			require.NoError(t, err)
			assert.Equal(t, tc.action, action)
			me, _ := c.Current()
			assert.Equal(t, tc.want, me.Following)
		})
	}
}
