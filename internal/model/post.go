// Package model holds the entities persisted by the blog API.
package model

// Post is a single blog post row.
type Post struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID int64  `json:"author_id"`
}

// PostPatch carries the fields of a partial update. Nil fields keep their
// stored value.
type PostPatch struct {
	Title   *string
	Content *string
}

// Empty reports whether the patch changes nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}
