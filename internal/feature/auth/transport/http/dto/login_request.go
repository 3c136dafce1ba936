// Package dto defines the form payloads of the auth pages.
package dto

// LoginForm is the body of POST /login.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
	Remember bool   `form:"remember" json:"remember"`
	Next     string `form:"next" json:"next"`
}
