// Package github reads public profile, repository and contribution data for
// the portfolio owner.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultAPIURL      = "https://api.github.com"
	defaultGraphQLURL  = "https://api.github.com/graphql"
	defaultDenoURL     = "https://github-contributions-api.deno.dev"
	defaultJogruberURL = "https://github-contributions-api.jogruber.de"

	userAgent = "portfolio-api"
)

// ErrNoToken is returned by calls that need an API token when none is configured.
var ErrNoToken = errors.New("github token not configured")

// StatusError reports a non-2xx answer from an upstream API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub API error %d", e.StatusCode)
}

type Client struct {
	apiURL      string
	graphqlURL  string
	denoURL     string
	jogruberURL string
	token       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	now         func() time.Time
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs points the client at other hosts, mainly test servers.
// Empty values keep the defaults.
func WithBaseURLs(api, graphql, deno, jogruber string) Option {
	return func(c *Client) {
		if api != "" {
			c.apiURL = api
		}
		if graphql != "" {
			c.graphqlURL = graphql
		}
		if deno != "" {
			c.denoURL = deno
		}
		if jogruber != "" {
			c.jogruberURL = jogruber
		}
	}
}

// WithRateLimit bounds outbound requests per second across all endpoints.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		apiURL:      defaultAPIURL,
		graphqlURL:  defaultGraphQLURL,
		denoURL:     defaultDenoURL,
		jogruberURL: defaultJogruberURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) HasToken() bool {
	return c.token != ""
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) getREST(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	return c.do(req, out)
}

func (c *Client) User(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.getREST(ctx, "/users/"+url.PathEscape(username), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Repos returns up to 100 public repositories, most recently updated first.
func (c *Client) Repos(ctx context.Context, username string) ([]Repo, error) {
	var repos []Repo
	endpoint := "/users/" + url.PathEscape(username) + "/repos?sort=updated&per_page=100"
	if err := c.getREST(ctx, endpoint, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

const contributionsQuery = `
  query($login: String!) {
    user(login: $login) {
      contributionsCollection {
        contributionCalendar {
          weeks { contributionDays { date contributionCount } }
        }
      }
    }
  }
`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type contributionsResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// ContributionWeeks reads the last year's contribution calendar through the
// GraphQL API. It needs a token.
func (c *Client) ContributionWeeks(ctx context.Context, username string) ([][]Day, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     contributionsQuery,
		Variables: map[string]any{"login": username},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	var resp contributionsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}

	weeks := [][]Day{}
	if resp.Data.User == nil {
		return weeks, nil
	}
	for _, w := range resp.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		week := make([]Day, 0, len(w.ContributionDays))
		for _, d := range w.ContributionDays {
			week = append(week, NewDay(d.Date, d.ContributionCount))
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// FallbackWeeks reads the calendar from the public contribution mirrors,
// trying each in turn. It never fails; when every mirror is down the
// result is empty.
func (c *Client) FallbackWeeks(ctx context.Context, username string) [][]Day {
	weeks, err := c.denoWeeks(ctx, username)
	if err == nil {
		return weeks
	}
	weeks, err = c.jogruberWeeks(ctx, username)
	if err == nil {
		return weeks
	}
	return [][]Day{}
}

func (c *Client) denoWeeks(ctx context.Context, username string) ([][]Day, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.denoURL+"/"+url.PathEscape(username)+".json", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var data struct {
		Contributions []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"contributions"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, err
	}

	days := make([]Day, 0, len(data.Contributions))
	for _, d := range data.Contributions {
		days = append(days, NewDay(d.Date, d.Count))
	}
	return chunkWeeks(days), nil
}

func (c *Client) jogruberWeeks(ctx context.Context, username string) ([][]Day, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jogruberURL+"/v4/"+url.PathEscape(username)+"?y=last", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var data struct {
		Contributions map[string]int `json:"contributions"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return weeksFromDateMap(data.Contributions), nil
}

// Weeks prefers the GraphQL calendar and falls back to the mirrors.
func (c *Client) Weeks(ctx context.Context, username string) [][]Day {
	weeks, err := c.ContributionWeeks(ctx, username)
	if err == nil {
		return weeks
	}
	return c.FallbackWeeks(ctx, username)
}
