package aley

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Attachment is one file uploaded with a post.
type Attachment struct {
	Filename string
	Data     []byte
}

// NewPost is the payload for Create. Privacy defaults to public.
type NewPost struct {
	Content     string
	Attachments []Attachment
	Emotion     *Emotion
	Location    string
	Privacy     Privacy
}

// ProgressFunc receives upload progress as a 0-100 percentage.
type ProgressFunc func(percent int)

// CreatePost uploads a post as multipart form data, reporting upload
// progress through progress when it is non-nil.
func (c *Client) CreatePost(ctx context.Context, post NewPost, progress ProgressFunc) (Post, error) {
	token := c.token()
	if token == "" {
		return Post{}, ErrNotAuthenticated
	}
	if post.Content == "" && len(post.Attachments) == 0 {
		return Post{}, fmt.Errorf("post content required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if post.Content != "" {
		if err := writer.WriteField("content", post.Content); err != nil {
			return Post{}, err
		}
	}
	for _, att := range post.Attachments {
		part, err := writer.CreateFormFile("attachments[]", att.Filename)
		if err != nil {
			return Post{}, err
		}
		if _, err := part.Write(att.Data); err != nil {
			return Post{}, err
		}
	}
	if post.Emotion != nil {
		encoded, err := json.Marshal(post.Emotion)
		if err != nil {
			return Post{}, err
		}
		if err := writer.WriteField("emotion", string(encoded)); err != nil {
			return Post{}, err
		}
	}
	if post.Location != "" {
		if err := writer.WriteField("location", post.Location); err != nil {
			return Post{}, err
		}
	}
	privacy := post.Privacy
	if privacy == "" {
		privacy = PrivacyPublic
	}
	if err := writer.WriteField("privacy", string(privacy)); err != nil {
		return Post{}, err
	}
	if err := writer.Close(); err != nil {
		return Post{}, err
	}

	body := io.Reader(&buf)
	if progress != nil {
		body = &progressReader{r: &buf, total: int64(buf.Len()), report: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", body)
	if err != nil {
		return Post{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Post{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Post{}, fmt.Errorf("read response: %w", err)
	}
	var wire postWire
	if err := c.decode(resp.StatusCode, respBody, &wire); err != nil {
		return Post{}, err
	}
	return wire.toPost(c.baseURL), nil
}

// PublicPosts returns the unauthenticated public post list.
func (c *Client) PublicPosts(ctx context.Context, page, limit int) ([]Post, error) {
	return c.postList(ctx, "/posts/list", pageQuery(page, limit), false)
}

// Feed returns the authenticated viewer's feed.
func (c *Client) Feed(ctx context.Context, page, limit int) ([]Post, error) {
	return c.postList(ctx, "/posts/feed", pageQuery(page, limit), true)
}

// PublicAndFriendsPosts returns the combined public and friends-tier
// listing. sort is "newest" or "popular".
func (c *Client) PublicAndFriendsPosts(ctx context.Context, page, limit int, sort string) ([]Post, error) {
	q := pageQuery(page, limit)
	if sort != "" {
		q.Set("sort", sort)
	}
	return c.postList(ctx, "/posts/public-and-friends", q, true)
}

// PostsByUser returns a user's posts. The token is attached when present
// so friends-tier posts are included for friends.
func (c *Client) PostsByUser(ctx context.Context, userID string, page, limit int) ([]Post, error) {
	return c.postList(ctx, "/posts/user/"+userID, pageQuery(page, limit), false)
}

// ToggleLike flips the viewer's like on a post. Callers that applied the
// change optimistically should roll it back when this fails.
func (c *Client) ToggleLike(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/posts/"+postID+"/like", nil, nil, nil, true)
}

// DeletePost removes one of the viewer's posts.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+postID, nil, nil, nil, true)
}

// UpdatePost edits one of the viewer's posts. fields may set content,
// privacy, emotion or location.
func (c *Client) UpdatePost(ctx context.Context, postID string, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, "/posts/"+postID, nil, fields, nil, true)
}

func (c *Client) postList(ctx context.Context, path string, q url.Values, authed bool) ([]Post, error) {
	var resp struct {
		Posts []postWire `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp, authed); err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(resp.Posts))
	for _, wire := range resp.Posts {
		posts = append(posts, wire.toPost(c.baseURL))
	}
	return posts, nil
}

// progressReader reports cumulative read progress while the request body
// is consumed.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
	last   int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		percent := int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent != p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}
