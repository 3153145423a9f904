// Package mockapi is an in-process Aley backend with in-memory state. It
// backs the package tests and the `aley mock` command, replacing the web
// client's localStorage friendship simulation with a real loopback server
// speaking the same routes and envelope as the production API.
package mockapi

import (
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type user struct {
	ID           string
	Email        string
	FullName     string
	Avatar       string
	PasswordHash string
	Verified     bool
	VerifyToken  string
	ResetToken   string
	Bio          string
}

type post struct {
	ID        string
	AuthorID  string
	Content   string
	Privacy   string
	Location  string
	Media     []string
	CreatedAt time.Time
	LikedBy   map[string]bool
}

type friendRequest struct {
	ID          string
	SenderID    string
	RecipientID string
	CreatedAt   time.Time
}

type friendEdge struct {
	ID string
	A  string
	B  string
}

type Server struct {
	App    *fiber.App
	secret []byte

	mu       sync.Mutex
	users    map[string]*user // by id
	posts    []*post          // newest first
	requests map[string]*friendRequest
	edges    map[string]*friendEdge
}

func NewServer(secret string) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		secret:   []byte(secret),
		users:    map[string]*user{},
		requests: map[string]*friendRequest{},
		edges:    map[string]*friendEdge{},
	}
	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.App.Group("/api")
	auth := s.bearerMiddleware()

	s.registerAuthRoutes(api.Group("/auth"))
	s.registerUserRoutes(api.Group("/users"), auth)
	s.registerPostRoutes(api.Group("/posts"), auth)
	s.registerFriendRoutes(api.Group("/friends"), auth)
}

// Listen serves on addr until the listener fails.
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Serve attaches the app to an existing listener; tests use this with a
// loopback listener on a random port.
func (s *Server) Serve(ln net.Listener) error {
	return s.App.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// ok wraps data in the backend's success envelope.
func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func okStatus(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

// fail writes the backend's error envelope. extra, when non-nil, becomes
// the data payload (used for 409 conflicts carrying a request id).
func fail(c *fiber.Ctx, status int, code, message string, extra any) error {
	body := fiber.Map{
		"success": false,
		"error":   fiber.Map{"code": code, "message": message},
	}
	if extra != nil {
		body["data"] = extra
	}
	return c.Status(status).JSON(body)
}

func (s *Server) findUserByEmail(email string) *user {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Server) areFriends(a, b string) *friendEdge {
	for _, e := range s.edges {
		if (e.A == a && e.B == b) || (e.A == b && e.B == a) {
			return e
		}
	}
	return nil
}

func (s *Server) pendingBetween(senderID, recipientID string) *friendRequest {
	for _, r := range s.requests {
		if r.SenderID == senderID && r.RecipientID == recipientID {
			return r
		}
	}
	return nil
}

func userJSON(u *user) fiber.Map {
	return fiber.Map{
		"user_id":     u.ID,
		"email":       u.Email,
		"fullName":    u.FullName,
		"avatar":      u.Avatar,
		"profile-bio": u.Bio,
	}
}
