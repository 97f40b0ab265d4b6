package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCmdDates(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	t.Run("single date", func(t *testing.T) {
		from, to, err := (&GenerateCmd{Date: "2024-03-04"}).dates(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, day("2024-03-04"), from)
		assert.Equal(t, from, to)
	})

	t.Run("range", func(t *testing.T) {
		from, to, err := (&GenerateCmd{From: "2024-03-01", To: "2024-03-07"}).dates(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, day("2024-03-01"), from)
		assert.Equal(t, day("2024-03-07"), to)
	})

	t.Run("defaults to today", func(t *testing.T) {
		from, to, err := (&GenerateCmd{}).dates(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, from, to)
		assert.WithinDuration(t, time.Now().UTC(), from, 24*time.Hour)
	})

	t.Run("malformed", func(t *testing.T) {
		_, _, err := (&GenerateCmd{From: "2024-03-01", To: "07/03/2024"}).dates(time.UTC)
		require.Error(t, err)
	})
}
