package client

import (
	"sync"

	"instaclone/internal/domain"
)

// SessionCache guarda el usuario logueado. Es seguro para uso concurrente y
// siempre entrega copias.
type SessionCache struct {
	mu   sync.RWMutex
	user *domain.User
}

func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

// Get devuelve una copia del usuario cacheado.
func (s *SessionCache) Get() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return cloneUser(*s.user), true
}

func (s *SessionCache) Set(u domain.User) {
	c := cloneUser(u)
	c.PasswordHash = ""
	s.mu.Lock()
	s.user = &c
	s.mu.Unlock()
}

func (s *SessionCache) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// flipFollowing alterna targetID en la lista following. Devuelve el id del
// usuario cacheado y si ya seguia a targetID antes del cambio.
func (s *SessionCache) flipFollowing(targetID string) (string, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return "", false, false
	}
	was := s.user.IsFollowing(targetID)
	s.user.Following = withFollowing(s.user.Following, targetID, !was)
	return s.user.ID, was, true
}

// setFollowing fija solo la pertenencia de targetID en following; el resto del
// estado, incluido lo confirmado por otras requests, queda intacto. No hace
// nada si la sesion ya no es de userID.
func (s *SessionCache) setFollowing(userID, targetID string, following bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != userID {
		return
	}
	s.user.Following = withFollowing(s.user.Following, targetID, following)
}

func withFollowing(list []string, targetID string, following bool) []string {
	out := make([]string, 0, len(list)+1)
	for _, id := range list {
		if id != targetID {
			out = append(out, id)
		}
	}
	if following {
		out = append(out, targetID)
	}
	return out
}

func cloneUser(u domain.User) domain.User {
	u.Followers = cloneStrings(u.Followers)
	u.Following = cloneStrings(u.Following)
	if u.Posts != nil {
		u.Posts = append([]domain.Post(nil), u.Posts...)
	}
	if u.Bookmarks != nil {
		u.Bookmarks = append([]domain.Post(nil), u.Bookmarks...)
	}
	return u
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
