package filesystem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparatorByNameCaseInsensitive(t *testing.T) {
	entries := []Entry{
		{Name: "banana.txt"},
		{Name: "Apple.txt"},
		{Name: "cherry.txt"},
	}
	require.NoError(t, SortEntries(entries, SortByName))

	assert.Equal(t, "Apple.txt", entries[0].Name)
	assert.Equal(t, "banana.txt", entries[1].Name)
	assert.Equal(t, "cherry.txt", entries[2].Name)
}

func TestComparatorBySize(t *testing.T) {
	entries := []Entry{
		{Name: "big", Size: 300},
		{Name: "small", Size: 1},
		{Name: "mid", Size: 42},
	}
	require.NoError(t, SortEntries(entries, SortBySize))

	assert.Equal(t, []string{"small", "mid", "big"},
		[]string{entries[0].Name, entries[1].Name, entries[2].Name})
}

func TestComparatorByDate(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{Name: "new", Modified: now},
		{Name: "old", Modified: now.Add(-time.Hour)},
	}
	require.NoError(t, SortEntries(entries, SortByDate))

	assert.Equal(t, "old", entries[0].Name)
	assert.Equal(t, "new", entries[1].Name)
}

func TestSortIsStable(t *testing.T) {
	entries := []Entry{
		{Name: "a", Size: 5, Path: "/1"},
		{Name: "b", Size: 5, Path: "/2"},
		{Name: "c", Size: 5, Path: "/3"},
	}
	require.NoError(t, SortEntries(entries, SortBySize))

	assert.Equal(t, "/1", entries[0].Path)
	assert.Equal(t, "/2", entries[1].Path)
	assert.Equal(t, "/3", entries[2].Path)
}

func TestComparatorUnknownKey(t *testing.T) {
	_, err := Comparator(SortKey("color"))
	require.Error(t, err)
	// A bad key is a caller bug, not a driver failure.
	assert.Equal(t, Code(0), CodeOf(err))
	assert.Contains(t, err.Error(), "color")
}
