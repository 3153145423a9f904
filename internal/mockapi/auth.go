package mockapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func (s *Server) signToken(userID string) (string, error) {
	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// bearerMiddleware validates bearer tokens and stores user_id in locals.
func (s *Server) bearerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
		}
		parsed, err := jwt.ParseWithClaims(token, &claims{}, func(_ *jwt.Token) (interface{}, error) {
			return s.secret, nil
		})
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
		}
		parsedClaims, okClaims := parsed.Claims.(*claims)
		if !okClaims || !parsed.Valid {
			return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "token invalid", nil)
		}
		c.Locals("user_id", parsedClaims.UserID)
		return c.Next()
	}
}

// viewerFromRequest returns the authenticated user id when a valid
// bearer token is attached, or "" for anonymous or bad tokens. Routes
// that are public but richer for logged-in viewers use this instead of
// the rejecting middleware.
func (s *Server) viewerFromRequest(c *fiber.Ctx) string {
	token := bearerFromHeader(c.Get("Authorization"))
	if token == "" {
		return ""
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ""
	}
	parsedClaims, okClaims := parsed.Claims.(*claims)
	if !okClaims {
		return ""
	}
	return parsedClaims.UserID
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (s *Server) registerAuthRoutes(r fiber.Router) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			FullName string `json:"fullname"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" || req.FullName == "" {
			return fail(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "fullname, email, password required", nil)
		}
		if len(req.Password) < 6 {
			return fail(c, fiber.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 6 characters long", nil)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.findUserByEmail(req.Email) != nil {
			return fail(c, fiber.StatusConflict, "EMAIL_EXISTS", "email already exists", nil)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		}
		u := &user{
			ID:           uuid.NewString(),
			Email:        req.Email,
			FullName:     req.FullName,
			PasswordHash: string(hash),
			VerifyToken:  uuid.NewString(),
		}
		s.users[u.ID] = u
		return okStatus(c, fiber.StatusCreated, fiber.Map{"user_id": u.ID})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fail(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "email and password required", nil)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		u := s.findUserByEmail(req.Email)
		if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			return fail(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
		}
		token, err := s.signToken(u.ID)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		}
		return ok(c, fiber.Map{"token": token})
	})

	r.Get("/verify/:token", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, u := range s.users {
			if u.VerifyToken != "" && u.VerifyToken == c.Params("token") {
				u.Verified = true
				u.VerifyToken = ""
				return ok(c, fiber.Map{"verified": true})
			}
		}
		return fail(c, fiber.StatusNotFound, "TOKEN_NOT_FOUND", "verification token not found", nil)
	})

	r.Post("/forgot-password", func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return fail(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "email required", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if u := s.findUserByEmail(req.Email); u != nil {
			u.ResetToken = uuid.NewString()
		}
		// Same answer whether or not the account exists.
		return ok(c, fiber.Map{"sent": true})
	})

	r.Post("/reset-password/:token", func(c *fiber.Ctx) error {
		var req struct {
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil || len(req.Password) < 6 {
			return fail(c, fiber.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 6 characters long", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, u := range s.users {
			if u.ResetToken != "" && u.ResetToken == c.Params("token") {
				hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
				if err != nil {
					return fail(c, fiber.StatusInternalServerError, "INTERNAL", err.Error(), nil)
				}
				u.PasswordHash = string(hash)
				u.ResetToken = ""
				return ok(c, fiber.Map{"reset": true})
			}
		}
		return fail(c, fiber.StatusNotFound, "TOKEN_NOT_FOUND", "reset token not found", nil)
	})
}

// SeedUser registers a user directly, bypassing email verification.
// Intended for tests and the demo mock server.
func (s *Server) SeedUser(email, fullName, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Verified:     true,
	}
	s.users[u.ID] = u
	return u.ID, nil
}
