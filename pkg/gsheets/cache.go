package gsheets

import "sync"

// Process-wide advisory cache of worksheet title -> numeric sheet id. It is
// refreshed whenever worksheets are enumerated and must never be relied on for
// correctness: titles are edited by humans and go stale between syncs.
var titleCache = struct {
	sync.RWMutex
	ids map[string]int64
}{ids: map[string]int64{}}

// RefreshTitleCache replaces cached entries for the given enumeration result.
func RefreshTitleCache(infos []WorksheetInfo) {
	titleCache.Lock()
	defer titleCache.Unlock()
	for _, info := range infos {
		titleCache.ids[info.Title] = info.SheetID
	}
}

// CachedSheetID returns the advisory sheet id for a title, if known.
func CachedSheetID(title string) (int64, bool) {
	titleCache.RLock()
	defer titleCache.RUnlock()
	id, ok := titleCache.ids[title]
	return id, ok
}
