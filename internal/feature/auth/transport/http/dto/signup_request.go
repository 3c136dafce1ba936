package dto

// SignupForm is the body of POST /signup/. Field rules are enforced by the
// credential store.
type SignupForm struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"-"`
}
