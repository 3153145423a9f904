package aley

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"client-aley/internal/mockapi"
	"client-aley/internal/session"
)

// startBackend runs the in-memory backend on a loopback port and returns
// a client wired to it through a fresh session store.
func startBackend(t *testing.T) (*Client, *session.Store, *mockapi.Server) {
	t.Helper()

	srv := mockapi.NewServer("test-secret")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown() })

	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	client := NewClient("http://"+ln.Addr().String()+"/api", store, nil)

	// The listener goroutine needs a moment on slow machines.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := client.Ping(context.Background()); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("backend did not come up")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return client, store, srv
}

func TestLoginStoresSession(t *testing.T) {
	client, store, srv := startBackend(t)
	userID, err := srv.SeedUser("alice@example.com", "Alice Example", "password1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	viewer, err := store.Viewer()
	if err != nil {
		t.Fatalf("viewer: %v", err)
	}
	if !viewer.Authenticated() {
		t.Fatalf("no token stored")
	}
	if viewer.UserID != userID {
		t.Fatalf("user id = %q, want %q", viewer.UserID, userID)
	}
	if viewer.Email != "alice@example.com" || viewer.DisplayName != "Alice Example" {
		t.Fatalf("profile not refreshed: %+v", viewer)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	client, store, srv := startBackend(t)
	if _, err := srv.SeedUser("alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := client.Login(context.Background(), "alice@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		// 401 on login goes through the same expiry path as any other
		// endpoint, so ErrSessionExpired is also acceptable here.
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	viewer, _ := store.Viewer()
	if viewer.Authenticated() {
		t.Fatalf("session stored after failed login")
	}
}

func TestExpiredTokenClearsSession(t *testing.T) {
	client, store, _ := startBackend(t)
	if err := store.SetViewer(session.Identity{UserID: "u", Token: "garbage"}); err != nil {
		t.Fatalf("set viewer: %v", err)
	}

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	viewer, _ := store.Viewer()
	if viewer.Authenticated() {
		t.Fatalf("session survived a 401")
	}
}

func TestAuthedCallWithoutSession(t *testing.T) {
	client, _, _ := startBackend(t)

	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestCreatePostAndFeed(t *testing.T) {
	client, _, srv := startBackend(t)
	if _, err := srv.SeedUser("alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var lastPercent int
	post, err := client.CreatePost(context.Background(), NewPost{
		Content: "hello #aley",
		Privacy: PrivacyPublic,
		Attachments: []Attachment{
			{Filename: "photo.jpg", Data: []byte("fake image bytes")},
		},
	}, func(percent int) { lastPercent = percent })
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.PostID == "" || post.Content != "hello #aley" {
		t.Fatalf("created post: %+v", post)
	}
	if lastPercent != 100 {
		t.Fatalf("final progress = %d", lastPercent)
	}
	if len(post.Media) != 1 {
		t.Fatalf("media: %+v", post.Media)
	}
	if post.Media[0].URL == "" || post.Media[0].Type != "image" {
		t.Fatalf("media not normalized: %+v", post.Media[0])
	}

	posts, err := client.Feed(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(posts) != 1 || posts[0].PostID != post.PostID {
		t.Fatalf("feed: %+v", posts)
	}
	if !posts[0].IsOwnPost {
		t.Fatalf("own post not hinted: %+v", posts[0])
	}

	if err := client.ToggleLike(context.Background(), post.PostID); err != nil {
		t.Fatalf("like: %v", err)
	}
	posts, err = client.Feed(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("feed after like: %v", err)
	}
	if !posts[0].IsLiked || posts[0].LikesCount != 1 {
		t.Fatalf("like not reflected: %+v", posts[0])
	}
}

func TestPublicPostsNeedNoSession(t *testing.T) {
	client, store, srv := startBackend(t)
	if _, err := srv.SeedUser("alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := client.CreatePost(context.Background(), NewPost{Content: "public note"}, nil); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	posts, err := client.PublicPosts(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("public posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Content != "public note" {
		t.Fatalf("public posts: %+v", posts)
	}
}

func TestSendFriendRequestConflict(t *testing.T) {
	client, _, srv := startBackend(t)
	if _, err := srv.SeedUser("alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	bobID, err := srv.SeedUser("bob@example.com", "Bob", "password1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	result, err := client.SendFriendRequest(context.Background(), bobID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.WasAutoAccepted || result.RequestID == "" {
		t.Fatalf("send result: %+v", result)
	}

	_, err = client.SendFriendRequest(context.Background(), bobID)
	requestID, conflict := IsConflict(err)
	if !conflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if requestID != result.RequestID {
		t.Fatalf("conflict request id = %q, want %q", requestID, result.RequestID)
	}
}

func TestSendFriendRequestAutoAccept(t *testing.T) {
	client, store, srv := startBackend(t)
	aliceID, err := srv.SeedUser("alice@example.com", "Alice", "password1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	bobID, err := srv.SeedUser("bob@example.com", "Bob", "password1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Bob asks first.
	if err := client.Login(context.Background(), "bob@example.com", "password1"); err != nil {
		t.Fatalf("login bob: %v", err)
	}
	if _, err := client.SendFriendRequest(context.Background(), aliceID); err != nil {
		t.Fatalf("bob send: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	// Alice answering in kind becomes friends immediately.
	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login alice: %v", err)
	}
	result, err := client.SendFriendRequest(context.Background(), bobID)
	if err != nil {
		t.Fatalf("alice send: %v", err)
	}
	if !result.WasAutoAccepted {
		t.Fatalf("expected auto-accept: %+v", result)
	}

	status, err := client.FriendshipStatusByID(context.Background(), bobID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != "friends" || status.FriendshipID == "" {
		t.Fatalf("status: %+v", status)
	}

	friends, err := client.Friends(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("friends: %v", err)
	}
	if len(friends) != 1 || friends[0].User.UserID != bobID {
		t.Fatalf("friends list: %+v", friends)
	}
}

func TestSuggestionsExcludeRelated(t *testing.T) {
	client, _, srv := startBackend(t)
	if _, err := srv.SeedUser("alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	bobID, err := srv.SeedUser("bob@example.com", "Bob", "password1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	carolID, err := srv.SeedUser("carol@example.com", "Carol", "password1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := client.SendFriendRequest(context.Background(), bobID); err != nil {
		t.Fatalf("send: %v", err)
	}

	users, err := client.Suggestions(context.Background(), 1, 10, "")
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(users) != 1 || users[0].UserID != carolID {
		t.Fatalf("suggestions: %+v", users)
	}
}

func TestDecodeEnvelopeFailureOnSuccessStatus(t *testing.T) {
	client := NewClient("http://backend.example.com/api", nil, nil)

	body := []byte(`{"success":false,"error":{"code":"SOMETHING_BROKE","message":"nope"}}`)
	err := client.decode(200, body, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != 200 || apiErr.Code != "SOMETHING_BROKE" || apiErr.Message != "nope" {
		t.Fatalf("api error = %+v", apiErr)
	}

	// An explicit success=true and an absent flag both pass.
	if err := client.decode(200, []byte(`{"success":true,"data":{}}`), nil); err != nil {
		t.Fatalf("success=true: %v", err)
	}
	if err := client.decode(200, []byte(`{"data":{}}`), nil); err != nil {
		t.Fatalf("no flag: %v", err)
	}
}

func TestUpdateProfilePersistsIdentity(t *testing.T) {
	client, store, srv := startBackend(t)
	if _, err := srv.SeedUser("alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := client.Login(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	user, err := client.UpdateProfile(context.Background(), map[string]any{
		"fullName":   "Alice Renamed",
		"profileBio": "hello",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.FullName != "Alice Renamed" || user.Bio != "hello" {
		t.Fatalf("updated user: %+v", user)
	}

	viewer, err := store.Viewer()
	if err != nil {
		t.Fatalf("viewer: %v", err)
	}
	if viewer.DisplayName != "Alice Renamed" {
		t.Fatalf("identity not refreshed: %+v", viewer)
	}
}
