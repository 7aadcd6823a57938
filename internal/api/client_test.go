package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publiflow/publiflow-client/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestLoginDecodesTokenAndUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  model.UserProfile{ID: 3, FullName: "Bea", Email: "a@b.com", RoleID: 2},
		})
	})

	res, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, int64(3), res.User.ID)
	assert.Equal(t, model.RoleTeacher, res.User.Role())
}

func TestBearerHeaderInjection(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Post{})
	})

	ctx := context.Background()
	_, err := c.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	c.SetToken("tok-77")
	_, err = c.Posts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-77", got)

	c.ClearToken()
	_, err = c.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFeedEncodesPaginationParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/feed", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "6", q.Get("limit"))
		assert.Equal(t, "news", q.Get("q"))
		_ = json.NewEncoder(w).Encode(feedResponse{
			Data: []model.Post{{ID: 10, Title: "hello"}},
			Meta: model.PageMeta{CurrentPage: 2, TotalPages: 3, TotalItems: 14, ItemsPerPage: 6},
		})
	})

	page, err := c.Feed(context.Background(), 2, 6, "news")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(10), page.Items[0].ID)
	assert.Equal(t, 3, page.Meta.TotalPages)
}

func TestServerMessageBecomesError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	})

	_, err := c.Login(context.Background(), "a@b", "x")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "invalid credentials")
}

func TestNonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := c.Posts(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}

func TestCreatePostMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/posts", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Title", r.FormValue("title"))
		assert.Equal(t, "Body", r.FormValue("description"))
		assert.Equal(t, "true", r.FormValue("visible"))

		file, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cover.png", hdr.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, content)

		_ = json.NewEncoder(w).Encode(model.Post{ID: 42, Title: "Title"})
	})

	p, err := c.CreatePost(context.Background(), PostInput{
		Title:       "Title",
		Description: "Body",
		Visible:     true,
		Image:       &Upload{Name: "cover.png", Content: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
}

func TestUpdatePostWithoutImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/posts/5", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		assert.Error(t, err) // no file part
		_ = json.NewEncoder(w).Encode(model.Post{ID: 5})
	})

	_, err := c.UpdatePost(context.Background(), 5, PostInput{Title: "t", Description: "d"})
	require.NoError(t, err)
}

func TestUserPasswordOmittedWhenEmpty(t *testing.T) {
	var raw []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(model.AdminUser{ID: 1})
	})
	ctx := context.Background()

	_, err := c.UpdateUser(ctx, 1, UserInput{FullName: "N", Email: "e@x", RoleID: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")

	_, err = c.CreateUser(ctx, UserInput{FullName: "N", Email: "e@x", RoleID: 1, Password: "pw"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"password":"pw"`)
}

func TestUsersByRolePath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/type/2", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]model.AdminUser{{ID: 8, FullName: "T", RoleID: 2}})
	})

	users, err := c.UsersByRole(context.Background(), model.RoleIDTeacher)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(8), users[0].ID)
}

func TestUserByIDPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/users/12", r.URL.Path)
		_ = json.NewEncoder(w).Encode(model.AdminUser{ID: 12, FullName: "Rui", RoleID: 1})
	})

	u, err := c.User(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
	assert.Equal(t, "Rui", u.FullName)
}

func TestDeleteEndpoints(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, c.DeletePost(ctx, 3))
	assert.Equal(t, "/posts/3", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)

	require.NoError(t, c.DeleteUser(ctx, 9))
	assert.Equal(t, "/users/9", gotPath)
}

func TestAdminAdaptersPresentSinglePage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			_ = json.NewEncoder(w).Encode([]model.Post{{ID: 1}, {ID: 2}})
		case "/users/type/1":
			_ = json.NewEncoder(w).Encode([]model.AdminUser{{ID: 4}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	posts, err := AdminPostsPage(c)(ctx, 7, 6, "ignored")
	require.NoError(t, err)
	assert.Len(t, posts.Items, 2)
	assert.Equal(t, 1, posts.Meta.CurrentPage)
	assert.Equal(t, 1, posts.Meta.TotalPages)

	users, err := AdminUsersPage(c, model.RoleIDStudent)(ctx, 1, 6, "")
	require.NoError(t, err)
	assert.Len(t, users.Items, 1)
	assert.Equal(t, 1, users.Meta.TotalPages)
}
