package github

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

type User struct {
	Login       string `json:"login"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

type Repo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Language        *string   `json:"language"`
	Topics          []string  `json:"topics"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Day is one cell of the contribution calendar.
type Day struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type Stats struct {
	TotalRepos            int       `json:"totalRepos"`
	TotalStars            int       `json:"totalStars"`
	TotalForks            int       `json:"totalForks"`
	Followers             int       `json:"followers"`
	ContributionsWeeks    [][]Day   `json:"contributionsWeeks"`
	ContributionsThisYear int       `json:"contributionsThisYear"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// Level buckets a day's contribution count into the 0..4 heat-map scale.
func Level(count int) int {
	return min(max(count/3, 0), 4)
}

func NewDay(date string, count int) Day {
	return Day{Date: date, Count: count, Level: Level(count)}
}

func chunkWeeks(days []Day) [][]Day {
	weeks := [][]Day{}
	for chunk := range slices.Chunk(days, 7) {
		weeks = append(weeks, chunk)
	}
	return weeks
}

func weeksFromDateMap(counts map[string]int) [][]Day {
	dates := make([]string, 0, len(counts))
	for d := range counts {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, NewDay(d, counts[d]))
	}
	return chunkWeeks(days)
}

// Stats gathers profile totals and the contribution calendar. The three
// upstream reads run concurrently; a failing profile or repository read
// fails the whole call.
func (c *Client) Stats(ctx context.Context, username string) (*Stats, error) {
	var (
		user  *User
		repos []Repo
		weeks [][]Day
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = c.User(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = c.Repos(gctx, username)
		return err
	})
	g.Go(func() error {
		weeks = c.Weeks(gctx, username)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalRepos:         user.PublicRepos,
		Followers:          user.Followers,
		ContributionsWeeks: weeks,
		LastUpdated:        c.now().UTC(),
	}
	for _, r := range repos {
		stats.TotalStars += r.StargazersCount
		stats.TotalForks += r.ForksCount
	}
	for _, week := range weeks {
		for _, d := range week {
			stats.ContributionsThisYear += d.Count
		}
	}
	return stats, nil
}
