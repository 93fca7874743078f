// Package client es el cliente HTTP de la API. Mantiene la cookie de sesion en
// un cookie jar y un cache del usuario logueado con updates optimistas.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"instaclone/internal/domain"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError es una respuesta de error de la API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   *SessionCache
}

// New crea un cliente contra baseURL (por ejemplo http://localhost:8080/api/v1).
// Si httpClient no tiene cookie jar se le asigna uno.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cache:   NewSessionCache(),
	}, nil
}

// Current devuelve el usuario cacheado.
func (c *Client) Current() (domain.User, bool) {
	return c.cache.Get()
}

type envelope struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	User        *domain.ProfileView `json:"user,omitempty"`
	Users       []domain.User       `json:"users,omitempty"`
	Action      domain.FollowAction `json:"action,omitempty"`
	UpdatedUser *domain.User        `json:"updatedUser,omitempty"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	_, err := c.doJSON(ctx, http.MethodPost, "/user/register", body)
	return err
}

// Login autentica y llena el cache con el usuario devuelto.
func (c *Client) Login(ctx context.Context, email, password string) (domain.ProfileView, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/user/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.ProfileView{}, err
	}
	if env.User == nil {
		return domain.ProfileView{}, errors.New("login response without user")
	}
	c.cache.Set(env.User.User)
	return *env.User, nil
}

// Logout limpia el cache aunque la request falle.
func (c *Client) Logout(ctx context.Context) error {
	defer c.cache.Clear()
	_, err := c.doJSON(ctx, http.MethodGet, "/user/logout", nil)
	return err
}

func (c *Client) Profile(ctx context.Context, userID string) (domain.ProfileView, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/user/"+url.PathEscape(userID)+"/profile", nil)
	if err != nil {
		return domain.ProfileView{}, err
	}
	if env.User == nil {
		return domain.ProfileView{}, errors.New("profile response without user")
	}
	if current, ok := c.cache.Get(); ok && current.ID == env.User.ID {
		c.cache.Set(env.User.User)
	}
	return *env.User, nil
}

func (c *Client) Suggested(ctx context.Context) ([]domain.User, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/user/suggested", nil)
	if err != nil {
		return nil, err
	}
	return env.Users, nil
}

type EditProfileInput struct {
	Bio       string
	Gender    string
	PhotoName string
	Photo     io.Reader
}

func (c *Client) EditProfile(ctx context.Context, input EditProfileInput) (domain.ProfileView, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if input.Bio != "" {
		_ = w.WriteField("bio", input.Bio)
	}
	if input.Gender != "" {
		_ = w.WriteField("gender", input.Gender)
	}
	if input.Photo != nil {
		part, err := w.CreateFormFile("profilePhoto", input.PhotoName)
		if err != nil {
			return domain.ProfileView{}, err
		}
		if _, err := io.Copy(part, input.Photo); err != nil {
			return domain.ProfileView{}, err
		}
	}
	if err := w.Close(); err != nil {
		return domain.ProfileView{}, err
	}

	env, err := c.do(ctx, http.MethodPost, "/user/edit", &buf, w.FormDataContentType())
	if err != nil {
		return domain.ProfileView{}, err
	}
	if env.User == nil {
		return domain.ProfileView{}, errors.New("edit response without user")
	}
	c.cache.Set(env.User.User)
	return *env.User, nil
}

// ToggleFollow alterna el follow a targetID. El cache se actualiza antes de la
// request; si la request falla solo se revierte la entrada de targetID.
func (c *Client) ToggleFollow(ctx context.Context, targetID string) (domain.FollowAction, error) {
	userID, wasFollowing, ok := c.cache.flipFollowing(targetID)
	if !ok {
		return "", ErrNotLoggedIn
	}

	env, err := c.doJSON(ctx, http.MethodPost, "/user/followorunfollow/"+url.PathEscape(targetID), nil)
	if err != nil {
		c.cache.setFollowing(userID, targetID, wasFollowing)
		return "", err
	}
	switch {
	case env.UpdatedUser != nil:
		c.cache.Set(*env.UpdatedUser)
	case env.Action == domain.ActionFollowed:
		c.cache.setFollowing(userID, targetID, true)
	case env.Action == domain.ActionUnfollowed:
		c.cache.setFollowing(userID, targetID, false)
	}
	return env.Action, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (envelope, error) {
	if body == nil {
		return c.do(ctx, method, path, nil, "")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return envelope{}, err
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json")
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return envelope{}, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return envelope{}, err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope{}, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return envelope{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return envelope{}, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return env, nil
}
