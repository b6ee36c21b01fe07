package epg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentAndNext(t *testing.T) {
	listings := []Programme{
		{Start: "20240101090000", End: "20240101100000", Title: "Breakfast"},
		{Start: "20240101100000", End: "20240101120000", Title: "Morning Show"},
		{Start: "20240101120000", End: "20240101130000", Title: "Noon News"},
	}

	t.Run("now inside a listing", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
		result := CurrentAndNext(listings, now)

		require.NotNil(t, result.Current)
		assert.Equal(t, "Morning Show", result.Current.Title)
		require.NotNil(t, result.Next)
		assert.Equal(t, "Noon News", result.Next.Title)
	})

	t.Run("boundary instant belongs to the starting listing", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		result := CurrentAndNext(listings, now)

		require.NotNil(t, result.Current)
		assert.Equal(t, "Morning Show", result.Current.Title)
	})

	t.Run("now before everything yields next only", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		result := CurrentAndNext(listings, now)

		assert.Nil(t, result.Current)
		require.NotNil(t, result.Next)
		assert.Equal(t, "Breakfast", result.Next.Title)
	})

	t.Run("now in a gap yields next only", func(t *testing.T) {
		gapped := []Programme{
			{Start: "20240101090000", End: "20240101100000", Title: "Early"},
			{Start: "20240101110000", End: "20240101120000", Title: "Late"},
		}
		now := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
		result := CurrentAndNext(gapped, now)

		assert.Nil(t, result.Current)
		require.NotNil(t, result.Next)
		assert.Equal(t, "Late", result.Next.Title)
	})

	t.Run("everything in the past keeps the last listing current", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
		result := CurrentAndNext(listings, now)

		require.NotNil(t, result.Current)
		assert.Equal(t, "Noon News", result.Current.Title)
		assert.Nil(t, result.Next)
	})

	t.Run("last listing airing has no next", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
		result := CurrentAndNext(listings, now)

		require.NotNil(t, result.Current)
		assert.Equal(t, "Noon News", result.Current.Title)
		assert.Nil(t, result.Next)
	})

	t.Run("empty listings", func(t *testing.T) {
		result := CurrentAndNext(nil, time.Now())
		assert.Nil(t, result.Current)
		assert.Nil(t, result.Next)
	})
}
