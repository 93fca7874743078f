package domain

// FollowAction describe que hizo un toggle de follow.
type FollowAction string

const (
	ActionFollowed   FollowAction = "followed"
	ActionUnfollowed FollowAction = "unfollowed"
)

// Message devuelve el texto que se muestra al cliente para la accion.
func (a FollowAction) Message() string {
	if a == ActionUnfollowed {
		return "Unfollowed successfully."
	}
	return "Followed successfully."
}

// FollowResult es el resultado de ToggleFollow. User es el usuario que actua,
// releido despues del commit; puede ser nil si la relectura fallo.
type FollowResult struct {
	Action FollowAction
	User   *User
}
