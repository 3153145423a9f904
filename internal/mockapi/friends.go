package mockapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) registerFriendRoutes(r fiber.Router, auth fiber.Handler) {
	r.Get("/status/:id", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		return ok(c, s.statusJSON(viewerID, c.Params("id")))
	})

	r.Get("/check/:id", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		return ok(c, s.statusJSON(viewerID, c.Params("id")))
	})

	r.Post("/requests", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		var req struct {
			RecipientID string `json:"recipient_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.RecipientID == "" {
			return fail(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "recipient_id required", nil)
		}
		if req.RecipientID == viewerID {
			return fail(c, fiber.StatusBadRequest, "SELF_REQUEST", "cannot befriend yourself", nil)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.users[req.RecipientID] == nil {
			return fail(c, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		}
		if s.areFriends(viewerID, req.RecipientID) != nil {
			return fail(c, fiber.StatusConflict, "ALREADY_FRIENDS", "users are already friends", nil)
		}
		if existing := s.pendingBetween(viewerID, req.RecipientID); existing != nil {
			return fail(c, fiber.StatusConflict, "REQUEST_ALREADY_SENT", "friend request already sent",
				fiber.Map{"request_id": existing.ID})
		}

		// A pending request in the opposite direction means both users
		// want the friendship, so accept it immediately. The 200 status
		// (instead of 201) is how clients detect the auto-accept.
		if reverse := s.pendingBetween(req.RecipientID, viewerID); reverse != nil {
			delete(s.requests, reverse.ID)
			edge := &friendEdge{ID: uuid.NewString(), A: viewerID, B: req.RecipientID}
			s.edges[edge.ID] = edge
			return ok(c, fiber.Map{"friendship_id": edge.ID})
		}

		fr := &friendRequest{
			ID:          uuid.NewString(),
			SenderID:    viewerID,
			RecipientID: req.RecipientID,
			CreatedAt:   time.Now(),
		}
		s.requests[fr.ID] = fr
		return okStatus(c, fiber.StatusCreated, fiber.Map{"request_id": fr.ID})
	})

	r.Get("/requests/sent", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		page, limit := pageParams(c)
		s.mu.Lock()
		defer s.mu.Unlock()
		var items []fiber.Map
		for _, fr := range s.requests {
			if fr.SenderID == viewerID {
				items = append(items, fiber.Map{
					"request_id": fr.ID,
					"recipient":  userJSON(s.users[fr.RecipientID]),
					"created_at": fr.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
		}
		return ok(c, fiber.Map{"requests": paginate(items, page, limit)})
	})

	r.Get("/requests/received", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		page, limit := pageParams(c)
		s.mu.Lock()
		defer s.mu.Unlock()
		var items []fiber.Map
		for _, fr := range s.requests {
			if fr.RecipientID == viewerID {
				items = append(items, fiber.Map{
					"request_id": fr.ID,
					"sender":     userJSON(s.users[fr.SenderID]),
					"created_at": fr.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
		}
		return ok(c, fiber.Map{"requests": paginate(items, page, limit)})
	})

	r.Delete("/requests/:id", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		s.mu.Lock()
		defer s.mu.Unlock()
		fr := s.requests[c.Params("id")]
		if fr == nil {
			return fail(c, fiber.StatusNotFound, "REQUEST_NOT_FOUND", "friend request not found", nil)
		}
		if fr.SenderID != viewerID {
			return fail(c, fiber.StatusForbidden, "NOT_SENDER", "only the sender can cancel a request", nil)
		}
		delete(s.requests, fr.ID)
		return ok(c, fiber.Map{"cancelled": true})
	})

	r.Post("/requests/:id/accept", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		s.mu.Lock()
		defer s.mu.Unlock()
		fr := s.requests[c.Params("id")]
		if fr == nil {
			return fail(c, fiber.StatusNotFound, "REQUEST_NOT_FOUND", "friend request not found", nil)
		}
		if fr.RecipientID != viewerID {
			return fail(c, fiber.StatusForbidden, "NOT_RECIPIENT", "only the recipient can accept a request", nil)
		}
		delete(s.requests, fr.ID)
		edge := &friendEdge{ID: uuid.NewString(), A: fr.SenderID, B: fr.RecipientID}
		s.edges[edge.ID] = edge
		return ok(c, fiber.Map{"friendship_id": edge.ID})
	})

	r.Get("/list", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		page, limit := pageParams(c)
		s.mu.Lock()
		defer s.mu.Unlock()
		var items []fiber.Map
		for _, e := range s.edges {
			other := ""
			switch viewerID {
			case e.A:
				other = e.B
			case e.B:
				other = e.A
			default:
				continue
			}
			items = append(items, fiber.Map{
				"friendship_id": e.ID,
				"user":          userJSON(s.users[other]),
			})
		}
		return ok(c, fiber.Map{"friends": paginate(items, page, limit)})
	})

	r.Get("/suggestions", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		page, limit := pageParams(c)
		search := strings.ToLower(c.Query("search"))
		s.mu.Lock()
		defer s.mu.Unlock()
		var items []fiber.Map
		for _, u := range s.users {
			if u.ID == viewerID || s.areFriends(viewerID, u.ID) != nil {
				continue
			}
			if s.pendingBetween(viewerID, u.ID) != nil || s.pendingBetween(u.ID, viewerID) != nil {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(u.FullName), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) {
				continue
			}
			items = append(items, userJSON(u))
		}
		return ok(c, fiber.Map{"users": paginate(items, page, limit)})
	})

	r.Delete("/:id", auth, func(c *fiber.Ctx) error {
		viewerID := c.Locals("user_id").(string)
		s.mu.Lock()
		defer s.mu.Unlock()
		e := s.edges[c.Params("id")]
		if e == nil {
			return fail(c, fiber.StatusNotFound, "FRIENDSHIP_NOT_FOUND", "friendship not found", nil)
		}
		if e.A != viewerID && e.B != viewerID {
			return fail(c, fiber.StatusForbidden, "NOT_MEMBER", "not part of this friendship", nil)
		}
		delete(s.edges, e.ID)
		return ok(c, fiber.Map{"removed": true})
	})
}

// statusJSON computes the relationship between viewer and other, in the
// same shape the status and check endpoints share.
func (s *Server) statusJSON(viewerID, otherID string) fiber.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.areFriends(viewerID, otherID); e != nil {
		return fiber.Map{"status": "friends", "friendship_id": e.ID}
	}
	if fr := s.pendingBetween(viewerID, otherID); fr != nil {
		return fiber.Map{"status": "pending_sent", "request_id": fr.ID}
	}
	if fr := s.pendingBetween(otherID, viewerID); fr != nil {
		return fiber.Map{"status": "pending_received", "request_id": fr.ID}
	}
	return fiber.Map{"status": "not_friends"}
}
