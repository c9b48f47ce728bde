package store

const (
	postsTable = "posts"

	postIDColumn       = "id"
	postTitleColumn    = "title"
	postContentColumn  = "content"
	postAuthorIDColumn = "author_id"
)

const (
	usersTable = "users"

	userIDColumn       = "id"
	userEmailColumn    = "email"
	userPasswordColumn = "password"
)

var postColumns = []string{
	postIDColumn,
	postTitleColumn,
	postContentColumn,
	postAuthorIDColumn,
}
