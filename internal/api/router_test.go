package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/internal/api/handler"
	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

type testApp struct {
	t      *testing.T
	router *gin.Engine
	repos  *repository.Repositories
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		Media:   config.MediaConfig{Root: t.TempDir(), URLPrefix: "/media/", MaxUploadMB: 1},
		Swagger: config.SwaggerConfig{Enabled: true},
	}
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	storage := media.NewLocalStorage(cfg.Media.Root, cfg.Media.URLPrefix, cfg.Media.MaxUploadMB<<20)
	sessions := auth.NewManager(
		auth.NewMemorySessionStore(),
		auth.NewTokenManager("test-secret-0123456789", "socialfeed"),
		auth.ManagerConfig{CookieName: "sessionid", SessionTTL: time.Hour},
	)
	h := handler.New(handler.Deps{
		Auth:     service.NewAuthService(repos, bcrypt.MinCost),
		Profiles: service.NewProfileService(repos, nil, storage),
		Feed:     service.NewFeedService(repos, storage),
		Social:   service.NewSocialService(repos, nil),
		Messages: service.NewMessageService(repos, storage),
		Search:   service.NewSearchService(repos.Users),
		Sessions: sessions,
		DB:       repos,
	})
	r, err := NewRouter(cfg, h, sessions, storage)
	require.NoError(t, err)
	return &testApp{t: t, router: r, repos: repos}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookie)
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

// signup 注册并返回会话 cookie
func (a *testApp) signup(username string) *http.Cookie {
	a.t.Helper()
	w := a.postForm("/signup/", url.Values{
		"username":  {username},
		"password1": {"s3cretpass"},
		"password2": {"s3cretpass"},
	}, nil)
	require.Equal(a.t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(a.t, "/", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == "sessionid" {
			return c
		}
	}
	a.t.Fatalf("signup %s: no session cookie", username)
	return nil
}

func (a *testApp) user(username string) *model.User {
	a.t.Helper()
	u, err := a.repos.Users.GetByUsername(context.Background(), username)
	require.NoError(a.t, err)
	return u
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/inbox/?x=1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/accounts/login/?next="+url.QueryEscape("/inbox/?x=1"), w.Header().Get("Location"))

	w = app.postForm("/api/like/1/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = app.get("/search/?q=a", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signup("alice")

	w := app.get("/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	w = app.postForm("/signup/", url.Values{
		"username": {"Alice"}, "password1": {"s3cretpass"}, "password2": {"s3cretpass"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	w = app.postForm("/accounts/logout/", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, auth.LoginPath, w.Header().Get("Location"))
	w = app.get("/", cookie)
	assert.Equal(t, http.StatusFound, w.Code, "session is gone after logout")

	w = app.postForm("/accounts/login/", url.Values{"username": {"alice"}, "password": {"wrong-pass"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.postForm("/accounts/login/", url.Values{
		"username": {"alice"}, "password": {"s3cretpass"}, "next": {"/inbox/"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inbox/", w.Header().Get("Location"))

	w = app.postForm("/accounts/login/", url.Values{
		"username": {"alice"}, "password": {"s3cretpass"}, "next": {"//evil.example"},
	}, nil)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestFeedFollowAndLikeAPI(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")

	w := app.postForm("/", url.Values{"content": {"hello from alice"}}, alice)
	require.Equal(t, http.StatusFound, w.Code)

	w = app.get("/", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hello from alice")

	w = app.postForm("/api/follow/alice/", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	var follow map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &follow))
	assert.Equal(t, map[string]interface{}{"following": true, "count": float64(1)}, follow)

	w = app.get("/", bob)
	assert.Contains(t, w.Body.String(), "hello from alice")

	posts, err := app.repos.Posts.ListByAuthors(context.Background(), []uint64{app.user("alice").ID})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	likePath := fmt.Sprintf("/api/like/%d/", posts[0].ID)

	w = app.postForm(likePath, nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"count":1}`, w.Body.String())
	w = app.postForm(likePath, nil, bob)
	assert.JSONEq(t, `{"liked":false,"count":0}`, w.Body.String())

	w = app.postForm("/api/like/999/", nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = app.postForm("/api/follow/bob/", nil, bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = app.postForm("/api/follow/nobody/", nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.get("/profile/alice/", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ">Unfollow</button>")
}

func TestDeletePostByNonOwnerIsForbidden(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")

	app.postForm("/", url.Values{"content": {"mine"}}, alice)
	posts, err := app.repos.Posts.ListByAuthors(context.Background(), []uint64{app.user("alice").ID})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	path := fmt.Sprintf("/delete/%d/", posts[0].ID)

	w := app.postForm(path, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, err = app.repos.Posts.GetByID(context.Background(), posts[0].ID)
	require.NoError(t, err)

	w = app.postForm(path, nil, alice)
	assert.Equal(t, http.StatusFound, w.Code)
	_, err = app.repos.Posts.GetByID(context.Background(), posts[0].ID)
	assert.Error(t, err)

	w = app.postForm("/delete/abc/", nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatFlow(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")

	w := app.postForm("/chat/bob/", url.Values{"body": {""}}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.postForm("/chat/bob/", url.Values{"body": {"hi"}}, alice)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/chat/bob/", w.Header().Get("Location"))

	// 附件
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("body", "hello"))
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("some notes"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/chat/alice/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = app.do(req, bob)
	require.Equal(t, http.StatusFound, w.Code)

	w = app.get("/chat/bob/", alice)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "<p>hi</p>")
	require.Contains(t, body, "<p>hello</p>")
	assert.Less(t, strings.Index(body, "<p>hi</p>"), strings.Index(body, "<p>hello</p>"))
	assert.Contains(t, body, "notes.txt")

	w = app.get("/inbox/", bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/chat/alice/")

	w = app.get("/chat/nobody/", bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttachmentIsServedAsDownload(t *testing.T) {
	app := newTestApp(t)
	app.signup("alice")
	mallory := app.signup("mallory")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "evil.html")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(`<script>fetch('/api/follow/alice/',{method:'POST'})</script>`))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/chat/alice/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := app.do(req, mallory)
	require.Equal(t, http.StatusFound, w.Code)

	msgs, err := app.repos.Messages.ListThread(context.Background(), app.user("mallory").ID, app.user("alice").ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NotEmpty(t, msgs[0].File)
	assert.Equal(t, "evil.html", msgs[0].FileName)

	w = app.get("/media/"+msgs[0].File, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestEditProfileAndSearch(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")

	w := app.postForm("/profile/edit/", url.Values{"bio": {"gopher"}}, alice)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	w = app.get("/profile/alice/", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gopher")
	assert.Contains(t, w.Body.String(), "Edit profile")

	w = app.get("/search/?q=ALI", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/profile/alice/")
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"ok","data":{"status":"ok"}}`, w.Body.String())
}
