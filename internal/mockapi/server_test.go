package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func loginToken(t *testing.T, srv *Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login: err=%v status=%d", err, resp.StatusCode)
	}
	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeBody(t, resp, &env)
	return env.Data.Token
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode body %s: %v", raw, err)
	}
}

func authedRequest(method, path, token string, payload any) *http.Request {
	var reader io.Reader
	if payload != nil {
		body, _ := json.Marshal(payload)
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegisterLoginMe(t *testing.T) {
	srv := NewServer("test-secret")

	body, _ := json.Marshal(map[string]string{
		"fullname": "New User",
		"email":    "new@example.com",
		"password": "secret1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: err=%v status=%d", err, resp.StatusCode)
	}

	token := loginToken(t, srv, "new@example.com", "secret1")

	resp, err = srv.App.Test(authedRequest(http.MethodGet, "/api/users/me", token, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("me: err=%v status=%d", err, resp.StatusCode)
	}
	var env struct {
		Data struct {
			Email    string `json:"email"`
			FullName string `json:"fullName"`
		} `json:"data"`
	}
	decodeBody(t, resp, &env)
	if env.Data.Email != "new@example.com" || env.Data.FullName != "New User" {
		t.Fatalf("me payload: %+v", env.Data)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := NewServer("test-secret")
	if _, err := srv.SeedUser("taken@example.com", "Taken", "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body, _ := json.Marshal(map[string]string{
		"fullname": "Other",
		"email":    "taken@example.com",
		"password": "secret1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got err=%v status=%d", err, resp.StatusCode)
	}
}

func TestLoginBadPassword(t *testing.T) {
	srv := NewServer("test-secret")
	if _, err := srv.SeedUser("user@example.com", "User", "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"email": "user@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got err=%v status=%d", err, resp.StatusCode)
	}
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	srv := NewServer("test-secret")

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got err=%v status=%d", err, resp.StatusCode)
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	srv := NewServer("test-secret")
	aliceID, _ := srv.SeedUser("alice@example.com", "Alice", "secret1")
	bobID, _ := srv.SeedUser("bob@example.com", "Bob", "secret1")
	_ = aliceID

	aliceToken := loginToken(t, srv, "alice@example.com", "secret1")
	bobToken := loginToken(t, srv, "bob@example.com", "secret1")

	// First send: 201 with a request id.
	resp, err := srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests", aliceToken,
		map[string]string{"recipient_id": bobID}))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: err=%v status=%d", err, resp.StatusCode)
	}
	var created struct {
		Data struct {
			RequestID string `json:"request_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	if created.Data.RequestID == "" {
		t.Fatalf("missing request id")
	}

	// Second send: 409 carrying the existing request id in data.
	resp, err = srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests", aliceToken,
		map[string]string{"recipient_id": bobID}))
	if err != nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("resend: err=%v status=%d", err, resp.StatusCode)
	}
	var conflict struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Data struct {
			RequestID string `json:"request_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &conflict)
	if conflict.Error.Code != "REQUEST_ALREADY_SENT" || conflict.Data.RequestID != created.Data.RequestID {
		t.Fatalf("conflict payload: %+v", conflict)
	}

	// Bob sees it in received, accepts it.
	resp, err = srv.App.Test(authedRequest(http.MethodGet, "/api/friends/requests/received", bobToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("received: err=%v status=%d", err, resp.StatusCode)
	}
	resp, err = srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests/"+created.Data.RequestID+"/accept", bobToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: err=%v status=%d", err, resp.StatusCode)
	}

	// Both directions now report friends.
	resp, err = srv.App.Test(authedRequest(http.MethodGet, "/api/friends/status/"+bobID, aliceToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: err=%v status=%d", err, resp.StatusCode)
	}
	var status struct {
		Data struct {
			Status       string `json:"status"`
			FriendshipID string `json:"friendship_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &status)
	if status.Data.Status != "friends" || status.Data.FriendshipID == "" {
		t.Fatalf("status payload: %+v", status.Data)
	}

	// Unfriend and drop back to not_friends.
	resp, err = srv.App.Test(authedRequest(http.MethodDelete, "/api/friends/"+status.Data.FriendshipID, bobToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unfriend: err=%v status=%d", err, resp.StatusCode)
	}
	resp, err = srv.App.Test(authedRequest(http.MethodGet, "/api/friends/status/"+bobID, aliceToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status after unfriend: err=%v status=%d", err, resp.StatusCode)
	}
	decodeBody(t, resp, &status)
	if status.Data.Status != "not_friends" {
		t.Fatalf("status after unfriend: %+v", status.Data)
	}
}

func TestFriendRequestAutoAccept(t *testing.T) {
	srv := NewServer("test-secret")
	aliceID, _ := srv.SeedUser("alice@example.com", "Alice", "secret1")
	bobID, _ := srv.SeedUser("bob@example.com", "Bob", "secret1")

	aliceToken := loginToken(t, srv, "alice@example.com", "secret1")
	bobToken := loginToken(t, srv, "bob@example.com", "secret1")

	resp, err := srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests", aliceToken,
		map[string]string{"recipient_id": bobID}))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: err=%v status=%d", err, resp.StatusCode)
	}

	// Bob sending back gets 200, not 201, and both are now friends.
	resp, err = srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests", bobToken,
		map[string]string{"recipient_id": aliceID}))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("reverse send: err=%v status=%d", err, resp.StatusCode)
	}

	resp, err = srv.App.Test(authedRequest(http.MethodGet, "/api/friends/status/"+aliceID, bobToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: err=%v status=%d", err, resp.StatusCode)
	}
	var status struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	decodeBody(t, resp, &status)
	if status.Data.Status != "friends" {
		t.Fatalf("status payload: %+v", status.Data)
	}
}

func TestFeedVisibility(t *testing.T) {
	srv := NewServer("test-secret")
	srv.SeedUser("alice@example.com", "Alice", "secret1")
	bobID, _ := srv.SeedUser("bob@example.com", "Bob", "secret1")

	aliceToken := loginToken(t, srv, "alice@example.com", "secret1")
	bobToken := loginToken(t, srv, "bob@example.com", "secret1")
	_ = bobID

	createPost := func(token, content, privacy string) {
		t.Helper()
		body := &bytes.Buffer{}
		body.WriteString("content=" + content + "&privacy=" + privacy)
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", bytes.NewReader(body.Bytes()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := srv.App.Test(req)
		if err != nil || resp.StatusCode != http.StatusCreated {
			t.Fatalf("create post: err=%v status=%d", err, resp.StatusCode)
		}
	}

	createPost(bobToken, "bob-public", "public")
	createPost(bobToken, "bob-friends", "friends")
	createPost(bobToken, "bob-private", "private")
	createPost(aliceToken, "alice-private", "private")

	resp, err := srv.App.Test(authedRequest(http.MethodGet, "/api/posts/feed", aliceToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("feed: err=%v status=%d", err, resp.StatusCode)
	}
	var feed struct {
		Data struct {
			Posts []struct {
				Content   string `json:"content"`
				IsOwnPost bool   `json:"is_own_post"`
			} `json:"posts"`
		} `json:"data"`
	}
	decodeBody(t, resp, &feed)

	got := map[string]bool{}
	for _, p := range feed.Data.Posts {
		got[p.Content] = p.IsOwnPost
	}
	if _, found := got["bob-public"]; !found {
		t.Fatalf("public post missing: %v", got)
	}
	if _, found := got["bob-friends"]; found {
		t.Fatalf("friends-tier post of a non-friend leaked: %v", got)
	}
	if _, found := got["bob-private"]; found {
		t.Fatalf("private post leaked: %v", got)
	}
	if own, found := got["alice-private"]; !found || !own {
		t.Fatalf("own private post missing or not flagged: %v", got)
	}

	// The public listing needs no token and hides everything non-public.
	resp, err = srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/posts/list", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list: err=%v status=%d", err, resp.StatusCode)
	}
	decodeBody(t, resp, &feed)
	if len(feed.Data.Posts) != 1 || feed.Data.Posts[0].Content != "bob-public" {
		t.Fatalf("public listing: %+v", feed.Data.Posts)
	}
}

func TestUserPostsVisibility(t *testing.T) {
	srv := NewServer("test-secret")
	srv.SeedUser("alice@example.com", "Alice", "secret1")
	bobID, _ := srv.SeedUser("bob@example.com", "Bob", "secret1")

	aliceToken := loginToken(t, srv, "alice@example.com", "secret1")
	bobToken := loginToken(t, srv, "bob@example.com", "secret1")

	createPost := func(token, content, privacy string) {
		t.Helper()
		body := bytes.NewReader([]byte("content=" + content + "&privacy=" + privacy))
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := srv.App.Test(req)
		if err != nil || resp.StatusCode != http.StatusCreated {
			t.Fatalf("create post: err=%v status=%d", err, resp.StatusCode)
		}
	}
	createPost(bobToken, "bob-public", "public")
	createPost(bobToken, "bob-friends", "friends")
	createPost(bobToken, "bob-private", "private")

	fetch := func(token string) map[string]bool {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/posts/user/"+bobID, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := srv.App.Test(req)
		if err != nil || resp.StatusCode != http.StatusOK {
			t.Fatalf("user posts: err=%v status=%d", err, resp.StatusCode)
		}
		var out struct {
			Data struct {
				Posts []struct {
					Content string `json:"content"`
				} `json:"posts"`
			} `json:"data"`
		}
		decodeBody(t, resp, &out)
		got := map[string]bool{}
		for _, p := range out.Data.Posts {
			got[p.Content] = true
		}
		return got
	}

	// Anonymous and non-friend viewers see only public posts.
	for _, token := range []string{"", aliceToken} {
		got := fetch(token)
		if len(got) != 1 || !got["bob-public"] {
			t.Fatalf("non-friend view: %v", got)
		}
	}

	// Befriend alice and the friends-tier post appears for her.
	resp, err := srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests", aliceToken,
		map[string]string{"recipient_id": bobID}))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: err=%v status=%d", err, resp.StatusCode)
	}
	var created struct {
		Data struct {
			RequestID string `json:"request_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	resp, err = srv.App.Test(authedRequest(http.MethodPost, "/api/friends/requests/"+created.Data.RequestID+"/accept", bobToken, nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: err=%v status=%d", err, resp.StatusCode)
	}

	got := fetch(aliceToken)
	if !got["bob-public"] || !got["bob-friends"] || got["bob-private"] {
		t.Fatalf("friend view: %v", got)
	}

	// The author sees everything, private included.
	got = fetch(bobToken)
	if len(got) != 3 {
		t.Fatalf("author view: %v", got)
	}
}

func TestLikeToggle(t *testing.T) {
	srv := NewServer("test-secret")
	srv.SeedUser("alice@example.com", "Alice", "secret1")
	token := loginToken(t, srv, "alice@example.com", "secret1")

	body := bytes.NewReader([]byte("content=hello&privacy=public"))
	req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: err=%v status=%d", err, resp.StatusCode)
	}
	var created struct {
		Data struct {
			PostID string `json:"post_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)

	like := func(wantLiked bool, wantCount int) {
		t.Helper()
		resp, err := srv.App.Test(authedRequest(http.MethodPost, "/api/posts/"+created.Data.PostID+"/like", token, nil))
		if err != nil || resp.StatusCode != http.StatusOK {
			t.Fatalf("like: err=%v status=%d", err, resp.StatusCode)
		}
		var out struct {
			Data struct {
				Liked      bool `json:"liked"`
				LikesCount int  `json:"likes_count"`
			} `json:"data"`
		}
		decodeBody(t, resp, &out)
		if out.Data.Liked != wantLiked || out.Data.LikesCount != wantCount {
			t.Fatalf("like payload: %+v", out.Data)
		}
	}
	like(true, 1)
	like(false, 0)
}
