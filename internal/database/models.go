package database

// Article is a row of the local article store. Category is kept as the raw
// string the article service delivered; callers parse it.
type Article struct {
	ID       int64
	Title    string
	Author   string
	Category string
	Content  string
	Date     *string
	LoadedAt *string
}
