package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/models"
)

func TestFormatCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("# Title\n\nSome **bold** text."))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"format"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t,
		`<h1 class="text-3xl font-bold mt-10 mb-6">Title</h1><p class="mb-4 leading-relaxed">Some <strong class="font-semibold">bold</strong> text.</p>`,
		out.String())
}

func TestFormatCommand_RejectsUnknownFormat(t *testing.T) {
	rootCmd.SetIn(strings.NewReader("x"))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"format", "--content-format", "rtf"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		formatFormat = "markdown"
	})

	assert.Error(t, rootCmd.Execute())
}

func TestWriteSummary(t *testing.T) {
	summary := &models.AnalyticsSummary{
		TotalPageViews: 2,
		TopPages:       []models.TopPage{{Path: "/a", Count: 2, Title: "A"}},
		TopBlogPosts:   []models.TopBlogPost{},
		DailyStats:     []models.DailyStat{{Date: "2026-03-14", PageViews: 2}},
		Period:         "7d",
	}

	var js bytes.Buffer
	require.NoError(t, writeSummary(&js, summary, "json"))
	assert.Contains(t, js.String(), `"totalPageViews": 2`)

	var ym bytes.Buffer
	require.NoError(t, writeSummary(&ym, summary, "yaml"))
	assert.Contains(t, ym.String(), "totalPageViews: 2")
	assert.Contains(t, ym.String(), "period: 7d")

	assert.Error(t, writeSummary(&bytes.Buffer{}, summary, "xml"))
}
