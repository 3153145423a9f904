package mockapi

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) postJSON(p *post, viewerID string) fiber.Map {
	author := s.users[p.AuthorID]
	authorMap := fiber.Map{}
	if author != nil {
		authorMap = fiber.Map{
			"id":      author.ID,
			"user_id": author.ID,
			"_id":     author.ID,
			"name":    author.FullName,
			"email":   author.Email,
			"avatar":  author.Avatar,
		}
	}
	return fiber.Map{
		"post_id":        p.ID,
		"content":        p.Content,
		"created_at":     p.CreatedAt.UTC().Format(time.RFC3339),
		"privacy":        p.Privacy,
		"location":       p.Location,
		"author":         authorMap,
		"media":          p.Media,
		"likes_count":    len(p.LikedBy),
		"comments_count": 0,
		"shares_count":   0,
		"is_liked":       viewerID != "" && p.LikedBy[viewerID],
		"is_own_post":    viewerID != "" && p.AuthorID == viewerID,
	}
}

func pageParams(c *fiber.Ctx) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Server) registerPostRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)

		content := c.FormValue("content")
		privacy := c.FormValue("privacy", "public")
		location := c.FormValue("location")

		var mediaIDs []string
		if form, err := c.MultipartForm(); err == nil && form != nil {
			for _, file := range form.File["attachments[]"] {
				mediaIDs = append(mediaIDs, uuid.NewString()+"-"+file.Filename)
			}
		}
		if content == "" && len(mediaIDs) == 0 {
			return fail(c, fiber.StatusBadRequest, "EMPTY_POST", "post content required", nil)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		p := &post{
			ID:        uuid.NewString(),
			AuthorID:  viewerID,
			Content:   content,
			Privacy:   privacy,
			Location:  location,
			Media:     mediaIDs,
			CreatedAt: time.Now(),
			LikedBy:   map[string]bool{},
		}
		s.posts = append([]*post{p}, s.posts...)
		return okStatus(c, fiber.StatusCreated, s.postJSON(p, viewerID))
	})

	r.Get("/list", func(c *fiber.Ctx) error {
		page, limit := pageParams(c)
		s.mu.Lock()
		defer s.mu.Unlock()
		var visible []*post
		for _, p := range s.posts {
			if p.Privacy == "public" {
				visible = append(visible, p)
			}
		}
		return ok(c, s.postPage(visible, page, limit, ""))
	})

	r.Get("/feed", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		page, limit := pageParams(c)
		s.mu.Lock()
		defer s.mu.Unlock()
		var visible []*post
		for _, p := range s.posts {
			switch {
			case p.AuthorID == viewerID:
				visible = append(visible, p)
			case p.Privacy == "public":
				visible = append(visible, p)
			case p.Privacy == "friends" && s.areFriends(viewerID, p.AuthorID) != nil:
				visible = append(visible, p)
			}
		}
		return ok(c, s.postPage(visible, page, limit, viewerID))
	})

	r.Get("/public-and-friends", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		page, limit := pageParams(c)
		sortBy := c.Query("sort", "newest")
		s.mu.Lock()
		defer s.mu.Unlock()
		var visible []*post
		for _, p := range s.posts {
			switch {
			case p.Privacy == "public":
				visible = append(visible, p)
			case p.Privacy == "friends" && (p.AuthorID == viewerID || s.areFriends(viewerID, p.AuthorID) != nil):
				visible = append(visible, p)
			}
		}
		if sortBy == "popular" {
			sorted := make([]*post, len(visible))
			copy(sorted, visible)
			sort.SliceStable(sorted, func(i, j int) bool {
				return len(sorted[i].LikedBy) > len(sorted[j].LikedBy)
			})
			visible = sorted
		}
		return ok(c, s.postPage(visible, page, limit, viewerID))
	})

	r.Get("/user/:id", func(c *fiber.Ctx) error {
		viewerID := s.viewerFromRequest(c)
		page, limit := pageParams(c)
		targetID := c.Params("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		var visible []*post
		for _, p := range s.posts {
			if p.AuthorID != targetID {
				continue
			}
			switch {
			case viewerID == targetID:
				visible = append(visible, p)
			case p.Privacy == "public":
				visible = append(visible, p)
			case p.Privacy == "friends" && viewerID != "" && s.areFriends(viewerID, targetID) != nil:
				visible = append(visible, p)
			}
		}
		return ok(c, s.postPage(visible, page, limit, viewerID))
	})

	r.Post("/:id/like", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, p := range s.posts {
			if p.ID == c.Params("id") {
				if p.LikedBy[viewerID] {
					delete(p.LikedBy, viewerID)
				} else {
					p.LikedBy[viewerID] = true
				}
				return ok(c, fiber.Map{"liked": p.LikedBy[viewerID], "likes_count": len(p.LikedBy)})
			}
		}
		return fail(c, fiber.StatusNotFound, "POST_NOT_FOUND", "post not found", nil)
	})

	r.Delete("/:id", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, p := range s.posts {
			if p.ID == c.Params("id") {
				if p.AuthorID != viewerID {
					return fail(c, fiber.StatusForbidden, "NOT_OWNER", "cannot delete another user's post", nil)
				}
				s.posts = append(s.posts[:i], s.posts[i+1:]...)
				return ok(c, fiber.Map{"deleted": true})
			}
		}
		return fail(c, fiber.StatusNotFound, "POST_NOT_FOUND", "post not found", nil)
	})

	r.Put("/:id", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		var req map[string]json.RawMessage
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, p := range s.posts {
			if p.ID == c.Params("id") {
				if p.AuthorID != viewerID {
					return fail(c, fiber.StatusForbidden, "NOT_OWNER", "cannot edit another user's post", nil)
				}
				applyString(req, "content", &p.Content)
				applyString(req, "privacy", &p.Privacy)
				applyString(req, "location", &p.Location)
				return ok(c, s.postJSON(p, viewerID))
			}
		}
		return fail(c, fiber.StatusNotFound, "POST_NOT_FOUND", "post not found", nil)
	})
}

func (s *Server) postPage(posts []*post, page, limit int, viewerID string) fiber.Map {
	pageItems := paginate(posts, page, limit)
	items := make([]fiber.Map, 0, len(pageItems))
	for _, p := range pageItems {
		items = append(items, s.postJSON(p, viewerID))
	}
	return fiber.Map{"posts": items, "total": len(posts), "page": page, "limit": limit}
}

func applyString(req map[string]json.RawMessage, key string, dst *string) {
	raw, found := req[key]
	if !found {
		return
	}
	var value string
	if json.Unmarshal(raw, &value) == nil && value != "" {
		*dst = value
	}
}
