// Package dto defines the form payloads of the post pages.
package dto

// PostForm is the body of POST /admin/post/.
type PostForm struct {
	Title    string `form:"title"`
	Category string `form:"category"`
	Content  string `form:"content"`
}
