package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddolearn/kiddo-player/internal/ui/tui/models"
	"github.com/kiddolearn/kiddo-player/internal/version"
)

func TestBuildLessons(t *testing.T) {
	lessons := buildLessons(
		[]string{"a.mp4", "b.webm", "c.ogg"},
		[]string{"Counting", "Colours"},
		[]string{"a.png"},
	)

	assert.Equal(t, []models.Lesson{
		{Source: "a.mp4", Title: "Counting", Poster: "a.png"},
		{Source: "b.webm", Title: "Colours"},
		{Source: "c.ogg"},
	}, lessons)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"version", "--short"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, version.GetVersion()+"\n", out.String())
}

func TestRootRequiresSource(t *testing.T) {
	rootCmd.SetArgs([]string{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
