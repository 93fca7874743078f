// Package repotest provee implementaciones en memoria de los repositorios
// para tests de servicios, handlers y cliente. Respetan la misma semantica de
// conjuntos que el esquema Postgres (una fila por arista, like o bookmark).
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"instaclone/internal/domain"
)

type edge struct {
	from, to string
}

// Store guarda el estado compartido por los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	users     map[string]domain.User
	byEmail   map[string]string
	follows   map[edge]time.Time
	posts     map[string]domain.Post
	likes     map[edge]time.Time // post -> user
	comments  []domain.Comment
	bookmarks map[edge]time.Time // user -> post
	messages  []domain.Message
	failures  map[string]error
	clock     time.Time

	Users    *UserRepo
	Follows  *FollowRepo
	Posts    *PostRepo
	Messages *MessageRepo
}

func New() *Store {
	s := &Store{
		users:     make(map[string]domain.User),
		byEmail:   make(map[string]string),
		follows:   make(map[edge]time.Time),
		posts:     make(map[string]domain.Post),
		likes:     make(map[edge]time.Time),
		bookmarks: make(map[edge]time.Time),
		failures:  make(map[string]error),
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Users = &UserRepo{s: s}
	s.Follows = &FollowRepo{s: s}
	s.Posts = &PostRepo{s: s}
	s.Messages = &MessageRepo{s: s}
	return s
}

// Fail hace que la operacion op (por ejemplo "follows.Toggle") devuelva err
// hasta que se llame a Fail(op, nil).
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// FollowEdges devuelve la cantidad de aristas de follow.
func (s *Store) FollowEdges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.follows)
}

// UserCount devuelve la cantidad de usuarios registrados.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// los llamadores deben tener s.mu tomado.
func (s *Store) failure(op string) error {
	return s.failures[op]
}

// tick devuelve instantes estrictamente crecientes para ordenar de forma determinista.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) hydrateUser(u domain.User) domain.User {
	type stamped struct {
		id string
		at time.Time
	}
	var followers, following []stamped
	for e, at := range s.follows {
		if e.to == u.ID {
			followers = append(followers, stamped{e.from, at})
		}
		if e.from == u.ID {
			following = append(following, stamped{e.to, at})
		}
	}
	byTime := func(list []stamped) []string {
		sort.Slice(list, func(i, j int) bool {
			if list[i].at.Equal(list[j].at) {
				return list[i].id < list[j].id
			}
			return list[i].at.Before(list[j].at)
		})
		ids := make([]string, 0, len(list))
		for _, x := range list {
			ids = append(ids, x.id)
		}
		return ids
	}
	u.Followers = byTime(followers)
	u.Following = byTime(following)
	u.Posts = nil
	u.Bookmarks = nil
	return u
}

func (s *Store) hydratePost(p domain.Post) domain.Post {
	if author, ok := s.users[p.AuthorID]; ok {
		p.Author = author.Summary()
	}
	type stamped struct {
		id string
		at time.Time
	}
	var likes []stamped
	for e, at := range s.likes {
		if e.from == p.ID {
			likes = append(likes, stamped{e.to, at})
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].at.Before(likes[j].at) })
	p.Likes = make([]string, 0, len(likes))
	for _, l := range likes {
		p.Likes = append(p.Likes, l.id)
	}
	p.Comments = s.commentsFor(p.ID)
	return p
}

func (s *Store) commentsFor(postID string) []domain.Comment {
	out := []domain.Comment{}
	for _, c := range s.comments {
		if c.PostID != postID {
			continue
		}
		if author, ok := s.users[c.AuthorID]; ok {
			c.Author = author.Summary()
		}
		out = append(out, c)
	}
	return out
}

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Create"); err != nil {
		return err
	}
	if _, ok := r.s.byEmail[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.tick()
	}
	user.Followers = nil
	user.Following = nil
	r.s.users[user.ID] = user
	r.s.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.GetByID"); err != nil {
		return domain.User{}, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.s.hydrateUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.GetByEmail"); err != nil {
		return domain.User{}, err
	}
	id, ok := r.s.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.s.hydrateUser(r.s.users[id]), nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.UpdateProfile"); err != nil {
		return domain.User{}, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Gender != nil {
		u.Gender = *update.Gender
	}
	if update.ProfilePicture != nil {
		u.ProfilePicture = *update.ProfilePicture
	}
	u.UpdatedAt = r.s.tick()
	r.s.users[id] = u
	return r.s.hydrateUser(u), nil
}

func (r *UserRepo) ListSuggested(_ context.Context, excludeID string, limit int) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.ListSuggested"); err != nil {
		return nil, err
	}
	all := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if u.ID != excludeID {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	for i := range all {
		all[i] = r.s.hydrateUser(all[i])
	}
	return all, nil
}

// FollowRepo implementa repository.FollowRepository.
type FollowRepo struct{ s *Store }

func (r *FollowRepo) Toggle(_ context.Context, followerID, followeeID string) (domain.FollowAction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("follows.Toggle"); err != nil {
		return "", err
	}
	if _, ok := r.s.users[followerID]; !ok {
		return "", domain.ErrUserNotFound
	}
	if _, ok := r.s.users[followeeID]; !ok {
		return "", domain.ErrUserNotFound
	}
	e := edge{followerID, followeeID}
	if _, ok := r.s.follows[e]; ok {
		delete(r.s.follows, e)
		return domain.ActionUnfollowed, nil
	}
	r.s.follows[e] = r.s.tick()
	return domain.ActionFollowed, nil
}

// PostRepo implementa repository.PostRepository.
type PostRepo struct{ s *Store }

func (r *PostRepo) Create(_ context.Context, post domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.Create"); err != nil {
		return err
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.s.tick()
	}
	post.Likes = nil
	post.Comments = nil
	r.s.posts[post.ID] = post
	return nil
}

func (r *PostRepo) GetByID(_ context.Context, id string) (domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.GetByID"); err != nil {
		return domain.Post{}, err
	}
	p, ok := r.s.posts[id]
	if !ok {
		return domain.Post{}, pgx.ErrNoRows
	}
	return r.s.hydratePost(p), nil
}

func (r *PostRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.posts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.posts, id)
	for e := range r.s.likes {
		if e.from == id {
			delete(r.s.likes, e)
		}
	}
	for e := range r.s.bookmarks {
		if e.to == id {
			delete(r.s.bookmarks, e)
		}
	}
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.PostID != id {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
	return nil
}

func (r *PostRepo) newestFirst(filter func(domain.Post) bool) []domain.Post {
	out := []domain.Post{}
	for _, p := range r.s.posts {
		if filter(p) {
			out = append(out, r.s.hydratePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *PostRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.ListByAuthor"); err != nil {
		return nil, err
	}
	return r.newestFirst(func(p domain.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *PostRepo) ListBookmarked(_ context.Context, userID string) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.ListBookmarked"); err != nil {
		return nil, err
	}
	type stamped struct {
		post domain.Post
		at   time.Time
	}
	var marked []stamped
	for e, at := range r.s.bookmarks {
		if e.from != userID {
			continue
		}
		if p, ok := r.s.posts[e.to]; ok {
			marked = append(marked, stamped{r.s.hydratePost(p), at})
		}
	}
	sort.Slice(marked, func(i, j int) bool { return marked[i].at.After(marked[j].at) })
	out := make([]domain.Post, 0, len(marked))
	for _, m := range marked {
		out = append(out, m.post)
	}
	return out, nil
}

func (r *PostRepo) ListFeed(_ context.Context, userID string, limit int) ([]domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.ListFeed"); err != nil {
		return nil, err
	}
	out := r.newestFirst(func(p domain.Post) bool {
		if p.AuthorID == userID {
			return true
		}
		_, ok := r.s.follows[edge{userID, p.AuthorID}]
		return ok
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PostRepo) AddLike(_ context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.AddLike"); err != nil {
		return err
	}
	e := edge{postID, userID}
	if _, ok := r.s.likes[e]; !ok {
		r.s.likes[e] = r.s.tick()
	}
	return nil
}

func (r *PostRepo) RemoveLike(_ context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.RemoveLike"); err != nil {
		return err
	}
	delete(r.s.likes, edge{postID, userID})
	return nil
}

func (r *PostRepo) AddComment(_ context.Context, comment domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.AddComment"); err != nil {
		return err
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.s.tick()
	}
	r.s.comments = append(r.s.comments, comment)
	return nil
}

func (r *PostRepo) ListComments(_ context.Context, postID string) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.ListComments"); err != nil {
		return nil, err
	}
	return r.s.commentsFor(postID), nil
}

func (r *PostRepo) ToggleBookmark(_ context.Context, userID, postID string) (domain.BookmarkAction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.ToggleBookmark"); err != nil {
		return "", err
	}
	e := edge{userID, postID}
	if _, ok := r.s.bookmarks[e]; ok {
		delete(r.s.bookmarks, e)
		return domain.BookmarkRemoved, nil
	}
	r.s.bookmarks[e] = r.s.tick()
	return domain.BookmarkAdded, nil
}

// MessageRepo implementa repository.MessageRepository.
type MessageRepo struct{ s *Store }

func (r *MessageRepo) Create(_ context.Context, message domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("messages.Create"); err != nil {
		return err
	}
	r.s.messages = append(r.s.messages, message)
	return nil
}

func (r *MessageRepo) ListConversation(_ context.Context, userID, otherID string) ([]domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("messages.ListConversation"); err != nil {
		return nil, err
	}
	out := []domain.Message{}
	for _, m := range r.s.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
