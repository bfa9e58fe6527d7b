package service

import "sync"

// chapterLocks serializes read-modify-write spans on a chapter's content
// file. The store itself has no transactions, so every mutation of the
// element sequence must hold the chapter's lock from resolve to save.
type chapterLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newChapterLocks() *chapterLocks {
	return &chapterLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *chapterLocks) lock(chapterID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[chapterID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[chapterID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
