package mockapi

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) registerUserRoutes(r fiber.Router, auth fiber.Handler) {
	r.Get("/me", auth, func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		u, found := s.users[c.Locals("user_id").(string)]
		if !found {
			return fail(c, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		}
		return ok(c, userJSON(u))
	})

	r.Put("/update", auth, func(c *fiber.Ctx) error {
		var req struct {
			FullName string `json:"fullName"`
			Avatar   string `json:"avatar"`
			Bio      string `json:"profile-bio"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "invalid payload", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		u, found := s.users[c.Locals("user_id").(string)]
		if !found {
			return fail(c, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		}
		if req.FullName != "" {
			u.FullName = req.FullName
		}
		if req.Avatar != "" {
			u.Avatar = req.Avatar
		}
		if req.Bio != "" {
			u.Bio = req.Bio
		}
		return ok(c, userJSON(u))
	})

	r.Get("/search", func(c *fiber.Ctx) error {
		query := strings.ToLower(c.Query("query"))
		s.mu.Lock()
		defer s.mu.Unlock()
		var users []fiber.Map
		for _, u := range s.users {
			if query == "" || strings.Contains(strings.ToLower(u.FullName), query) || strings.Contains(strings.ToLower(u.Email), query) {
				users = append(users, userJSON(u))
			}
		}
		return ok(c, fiber.Map{"users": users, "total": len(users)})
	})

	r.Get("/list", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		s.mu.Lock()
		defer s.mu.Unlock()
		var users []fiber.Map
		for _, u := range s.users {
			if len(users) >= limit {
				break
			}
			users = append(users, userJSON(u))
		}
		return ok(c, fiber.Map{"users": users, "total": len(s.users)})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		u, found := s.users[c.Params("id")]
		if !found {
			return fail(c, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		}
		return ok(c, userJSON(u))
	})
}
