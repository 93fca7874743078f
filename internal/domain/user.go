package domain

import "time"

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Bio            string    `json:"bio"`
	Gender         string    `json:"gender,omitempty"`
	ProfilePicture string    `json:"profilePicture"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	Posts          []Post    `json:"posts,omitempty"`
	Bookmarks      []Post    `json:"bookmarks,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserSummary es la vista reducida que se embebe en posts, comentarios y sugerencias.
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

// IsFollowing indica si el usuario sigue a targetID.
func (u User) IsFollowing(targetID string) bool {
	for _, id := range u.Following {
		if id == targetID {
			return true
		}
	}
	return false
}

// ProfileView es la vista publica de un usuario con contadores derivados.
type ProfileView struct {
	User
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
	PostCount      int `json:"postCount"`
}

func NewProfileView(u User) ProfileView {
	return ProfileView{
		User:           u,
		FollowerCount:  len(u.Followers),
		FollowingCount: len(u.Following),
		PostCount:      len(u.Posts),
	}
}

// ProfileUpdate contiene solo los campos enviados; nil significa "no modificar".
type ProfileUpdate struct {
	Bio            *string
	Gender         *string
	ProfilePicture *string
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.Bio == nil && p.Gender == nil && p.ProfilePicture == nil
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
)
