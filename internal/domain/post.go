package domain

import "time"

type Post struct {
	ID        string      `json:"id"`
	AuthorID  string      `json:"authorId"`
	Author    UserSummary `json:"author"`
	Caption   string      `json:"caption"`
	Image     string      `json:"image"`
	Likes     []string    `json:"likes"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LikedBy indica si userID aparece en la lista de likes.
func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

type Comment struct {
	ID        string      `json:"id"`
	PostID    string      `json:"postId"`
	AuthorID  string      `json:"authorId"`
	Author    UserSummary `json:"author"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt"`
}

// BookmarkAction describe el resultado de alternar un bookmark.
type BookmarkAction string

const (
	BookmarkAdded   BookmarkAction = "saved"
	BookmarkRemoved BookmarkAction = "unsaved"
)
