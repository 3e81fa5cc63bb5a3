// Package userprofile fetches a user from the remote user API and renders it as text.
package userprofile

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrFetchFailed is returned for any failed fetch, whatever the cause.
var ErrFetchFailed = errors.New("Failed to fetch user data")

// User is the subset of the remote user document that is displayed.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client calls GET {BaseURL}/users/{id}.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a Client. A zero timeout leaves the request unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// URL returns the address fetched for userID.
func (c *Client) URL(userID string) string {
	return c.baseURL + "/users/" + url.PathEscape(userID)
}

// Fetch retrieves the user. Transport failures, non-200 responses and undecodable
// bodies all yield ErrFetchFailed; the cause is logged.
func (c *Client) Fetch(userID string) (*User, error) {
	agent := fiber.Get(c.URL(userID))
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	var user User
	code, _, errs := agent.Struct(&user)
	if code != fiber.StatusOK {
		slog.Warn("user_fetch_failed", "user_id", userID, "status", code, "errors", errors.Join(errs...))
		return nil, ErrFetchFailed
	}
	if len(errs) > 0 {
		slog.Warn("user_fetch_failed", "user_id", userID, "error", errors.Join(errs...))
		return nil, ErrFetchFailed
	}
	return &user, nil
}

// State is the lifecycle of a profile view.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

// View is what a profile shows at a point in time.
type View struct {
	State State
	User  User
	Err   string
}

// Render formats the view as display lines.
func (v View) Render() string {
	switch v.State {
	case Loaded:
		return fmt.Sprintf("%s\nEmail: %s", v.User.Name, v.User.Email)
	case Failed:
		return "Error: " + v.Err
	default:
		return "Loading..."
	}
}

// Profile tracks the view for the user currently selected.
type Profile struct {
	client *Client
	userID string
	view   View
}

// NewProfile starts in the Loading state with nothing selected.
func NewProfile(client *Client) *Profile {
	return &Profile{client: client}
}

// View returns the current view.
func (p *Profile) View() View {
	return p.view
}

// Show selects userID and fetches it. Showing an id that is already loaded keeps the
// current view without another request.
func (p *Profile) Show(userID string) View {
	if userID == p.userID && p.view.State == Loaded {
		return p.view
	}
	p.userID = userID
	p.view = View{State: Loading}

	user, err := p.client.Fetch(userID)
	if err != nil {
		p.view = View{State: Failed, Err: err.Error()}
		return p.view
	}
	p.view = View{State: Loaded, User: *user}
	return p.view
}
