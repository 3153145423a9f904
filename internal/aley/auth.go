package aley

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"client-aley/internal/session"
)

type RegisterRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Register creates a new account. The backend sends a verification email;
// the account is not logged in until Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil, false)
}

// Login exchanges credentials for a bearer token and persists it. The
// viewer's user id is recovered from the token claims and the remaining
// profile fields are refreshed best-effort from /users/me.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp, false); err != nil {
		return err
	}

	identity := session.Identity{Token: resp.Token, Email: email}
	// The token is issued by the backend; we only read the user id claim,
	// we do not verify the signature client-side.
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(resp.Token, &claims); err == nil {
		identity.UserID = claims.UserID
	}
	if err := c.store.SetViewer(identity); err != nil {
		return err
	}

	if me, err := c.Me(ctx); err == nil {
		_ = c.store.SetViewer(session.Identity{
			UserID:      me.UserID,
			Email:       me.Email,
			DisplayName: me.FullName,
			AvatarURL:   me.Avatar,
		})
	} else {
		c.log.Debug("refresh viewer profile after login", "error", err)
	}
	return nil
}

// Logout clears the stored session. There is no server-side call.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// VerifyEmail confirms the address attached to a registration token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/auth/verify/"+token, nil, nil, nil, false)
}

// ForgotPassword requests a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, body, nil, false)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"password": newPassword}
	return c.do(ctx, http.MethodPost, "/auth/reset-password/"+token, nil, body, nil, false)
}
