package cache

import (
	"container/list"
	"time"
)

// section is one bounded LRU map from Key to its RRset. Reads and
// inserts both touch recency; eviction happens immediately after an
// insert pushes the map over maxSize.
type section struct {
	maxSize int
	ll      *list.List               // front = most recently used
	entries map[Key]*list.Element    // element.Value is *sectionEntry
}

type sectionEntry struct {
	key  Key
	rrs  []StoredRR
}

func newSection(maxSize int) *section {
	return &section{
		maxSize: maxSize,
		ll:      list.New(),
		entries: make(map[Key]*list.Element),
	}
}

// get returns the RRset for key and marks it most-recently-used. The
// bool distinguishes "no entry" from "entry with an empty list".
func (s *section) get(key Key) ([]StoredRR, bool) {
	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.ll.MoveToFront(el)
	return el.Value.(*sectionEntry).rrs, true
}

// set replaces the entry for key (evicting it first if present) then
// inserts rrs, evicting the least-recently-used entry if the section is
// now over capacity.
func (s *section) set(key Key, rrs []StoredRR) {
	if el, ok := s.entries[key]; ok {
		s.ll.Remove(el)
		delete(s.entries, key)
	}
	el := s.ll.PushFront(&sectionEntry{key: key, rrs: rrs})
	s.entries[key] = el

	if len(s.entries) > s.maxSize {
		oldest := s.ll.Back()
		if oldest != nil {
			s.ll.Remove(oldest)
			delete(s.entries, oldest.Value.(*sectionEntry).key)
		}
	}
}

// deleteExpired removes every entry whose every StoredRR has expired,
// and filters out individually-expired StoredRRs from entries that are
// only partially expired. An entry stored with an empty list has nothing
// to expire and is kept, so it stays a hit rather than a miss.
func (s *section) deleteExpired(now time.Time) {
	for key, el := range s.entries {
		entry := el.Value.(*sectionEntry)
		if len(entry.rrs) == 0 {
			continue
		}
		live := entry.rrs[:0:0]
		for _, rr := range entry.rrs {
			if !rr.Expired(now) {
				live = append(live, rr)
			}
		}
		if len(live) == 0 {
			s.ll.Remove(el)
			delete(s.entries, key)
			continue
		}
		entry.rrs = live
	}
}

func (s *section) len() int { return len(s.entries) }
