package gsheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCacheRefreshAndLookup(t *testing.T) {
	_, ok := CachedSheetID("no such tab")
	assert.False(t, ok)

	RefreshTitleCache([]WorksheetInfo{
		{Title: "Plan MOS W34", SheetID: 101},
		{Title: "unknown", SheetID: 102},
	})

	id, ok := CachedSheetID("Plan MOS W34")
	require.True(t, ok)
	assert.Equal(t, int64(101), id)

	// A rename on the remote side shows up on the next enumeration.
	RefreshTitleCache([]WorksheetInfo{{Title: "Plan MOS W35", SheetID: 101}})
	id, ok = CachedSheetID("Plan MOS W35")
	require.True(t, ok)
	assert.Equal(t, int64(101), id)
}
