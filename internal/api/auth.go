package api

import (
	"context"
	"net/http"
)

// User is the backend's user record.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by login. The refresh credential arrives
// separately as an HTTP-only cookie captured by the shared jar.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// RefreshResponse is returned by the refresh endpoint. The user is
// optional; some backend versions return only the token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user,omitempty"`
}

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a password reset with the token from
// the reset email.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest changes the password of the logged-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ContactRequest is the POST /contact-us body.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Login authenticates with email and password.
func (p *PublicClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := p.doJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges the cookie credential for a fresh access
// token. The expiring access token plays no part in this call.
func (p *PublicClient) RefreshToken(ctx context.Context) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := p.doJSON(ctx, http.MethodPost, "/auth/refresh-token", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout notifies the backend that the session ended. Callers treat
// this as fire-and-forget.
func (p *PublicClient) Logout(ctx context.Context) error {
	return p.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Register creates a customer account.
func (p *PublicClient) Register(ctx context.Context, name, email, password string) error {
	return p.doJSON(ctx, http.MethodPost, "/auth/register", RegisterRequest{Name: name, Email: email, Password: password}, nil)
}

// ForgotPassword requests a password reset email.
func (p *PublicClient) ForgotPassword(ctx context.Context, email string) error {
	return p.doJSON(ctx, http.MethodPost, "/auth/forgot-password", ForgotPasswordRequest{Email: email}, nil)
}

// ResetPassword completes a password reset.
func (p *PublicClient) ResetPassword(ctx context.Context, token, password string) error {
	return p.doJSON(ctx, http.MethodPost, "/auth/reset-password", ResetPasswordRequest{Token: token, Password: password}, nil)
}

// Contact submits the contact-us form.
func (p *PublicClient) Contact(ctx context.Context, req ContactRequest) error {
	return p.doJSON(ctx, http.MethodPost, "/contact-us", req, nil)
}

// ChangePassword changes the logged-in user's password. It goes
// through the gateway: an expired access token is refreshed
// transparently.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/change-password", ChangePasswordRequest{CurrentPassword: current, NewPassword: updated}, nil)
}
