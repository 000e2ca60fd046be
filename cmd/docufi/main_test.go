package main

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSplitPages(t *testing.T) {
	t.Run("form feed breaks pages", func(t *testing.T) {
		pages := splitPages("first page\ftext on second page", 2000)
		require.Len(t, pages, 2)
		assert.Equal(t, "first page", pages[0])
		assert.Equal(t, "text on second page", pages[1])
	})

	t.Run("paragraphs pack up to page size", func(t *testing.T) {
		text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60) + "\n\n" + strings.Repeat("c", 60)
		pages := splitPages(text, 130)
		require.Len(t, pages, 2)
		assert.Contains(t, pages[0], strings.Repeat("a", 60))
		assert.Contains(t, pages[0], strings.Repeat("b", 60))
		assert.Contains(t, pages[1], strings.Repeat("c", 60))
	})

	t.Run("oversized paragraph stands alone", func(t *testing.T) {
		pages := splitPages(strings.Repeat("x", 500), 100)
		require.Len(t, pages, 1)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, splitPages("  \n\n \f ", 2000))
	})
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	newApp := func() *cli.App {
		return &cli.App{
			Name:   "docufi",
			Before: setupLogger,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			err := newApp().Run([]string{"docufi", "--log-level", level})
			assert.NoError(t, err, "level %s", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := newApp().Run([]string{"docufi", "--log-level", "verbose"})
		assert.Error(t, err)
	})
}
