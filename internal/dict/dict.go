package dict

import "strings"

// RedirectPrefix marks a definition that points at another headword.
const RedirectPrefix = "@@@LINK="

type Entry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Scanner streams the entries of one dictionary file in source order.
// Scan advances to the next entry and returns false at the end of input or
// on error; Err reports the error, if any.
type Scanner interface {
	Scan() bool
	Entry() Entry
	Err() error
	Close() error
}

// SkipCounter is implemented by scanners that drop malformed records. The
// count lets the indexer compare what it read with what it stored.
type SkipCounter interface {
	Skipped() int64
}

// ParseRedirect returns the target headword of a redirect definition and
// whether raw is a redirect at all.
func ParseRedirect(raw string) (string, bool) {
	if !strings.HasPrefix(raw, RedirectPrefix) {
		return "", false
	}
	target := strings.TrimSpace(strings.TrimPrefix(raw, RedirectPrefix))
	target = strings.TrimRight(target, "\x00")
	return strings.TrimSpace(target), true
}

// SliceScanner is a Scanner over an in-memory entry list.
type SliceScanner struct {
	entries []Entry
	pos     int
}

func NewSliceScanner(entries []Entry) *SliceScanner {
	return &SliceScanner{entries: entries, pos: -1}
}

func (s *SliceScanner) Scan() bool {
	if s.pos+1 >= len(s.entries) {
		s.pos = len(s.entries)
		return false
	}
	s.pos++
	return true
}

func (s *SliceScanner) Entry() Entry {
	if s.pos < 0 || s.pos >= len(s.entries) {
		return Entry{}
	}
	return s.entries[s.pos]
}

func (s *SliceScanner) Err() error {
	return nil
}

func (s *SliceScanner) Close() error {
	return nil
}
