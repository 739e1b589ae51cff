package mdict

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/ChaosNyaruko/ondict/decoder"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/sagerenn/mdxlookup/internal/dict"
)

type keyRecord struct {
	word   string
	offset int
}

// Scanner yields the keyword/definition pairs of an .mdx file in record
// order. Keys are decoded up front; definitions are read one at a time.
type Scanner struct {
	mdx      *decoder.MDict
	encoding string
	keys     []keyRecord
	pos      int
	cur      dict.Entry
}

func Open(path string) (*Scanner, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("mdict: %w", err)
	}
	md := &decoder.MDict{}
	if err := md.Decode(path, false); err != nil {
		return nil, err
	}
	_ = md.Keys() // populate keymap
	keymap := mdictKeyMap(md)

	keys := make([]keyRecord, 0, len(keymap))
	for word, offs := range keymap {
		for _, off := range offs {
			keys = append(keys, keyRecord{word: word, offset: int(off)})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].offset == keys[j].offset {
			return keys[i].word < keys[j].word
		}
		return keys[i].offset < keys[j].offset
	})
	return &Scanner{
		mdx:      md,
		encoding: mdictEncoding(md),
		keys:     keys,
		pos:      -1,
	}, nil
}

func (s *Scanner) Scan() bool {
	s.pos++
	if s.pos >= len(s.keys) {
		return false
	}
	k := s.keys[s.pos]
	s.cur = dict.Entry{Word: k.word, Definition: s.decode(s.mdx.ReadAtOffset(k.offset))}
	return true
}

func (s *Scanner) Entry() dict.Entry { return s.cur }

func (s *Scanner) Err() error { return nil }

func (s *Scanner) Close() error {
	s.keys = nil
	return nil
}

// Len is the number of entries the scanner will produce.
func (s *Scanner) Len() int { return len(s.keys) }

func (s *Scanner) decode(b []byte) string {
	switch strings.ToUpper(s.encoding) {
	case "", "UTF-8", "UTF8":
		return string(b)
	case "UTF-16", "UTF-16LE":
		runes := make([]uint16, len(b)/2)
		_ = binary.Read(bytes.NewBuffer(b), binary.LittleEndian, runes)
		return string(utf16.Decode(runes))
	}
	if out, ok := decodeWithEncoding(s.encoding, b); ok {
		return out
	}
	return string(b)
}

func decodeWithEncoding(label string, data []byte) (string, bool) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", false
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func mdictEncoding(m *decoder.MDict) string {
	v := reflect.ValueOf(m).Elem().FieldByName("encoding")
	if v.IsValid() && v.Kind() == reflect.String {
		return v.String()
	}
	return "UTF-8"
}

// mdictKeyMap reads the decoder's unexported keyword -> record offsets map.
func mdictKeyMap(m *decoder.MDict) map[string][]uint64 {
	v := reflect.ValueOf(m).Elem().FieldByName("keymap")
	if !v.IsValid() || v.IsNil() {
		return nil
	}
	out := make(map[string][]uint64, v.Len())
	for _, k := range v.MapKeys() {
		vals := v.MapIndex(k)
		offs := make([]uint64, 0, vals.Len())
		for i := 0; i < vals.Len(); i++ {
			offs = append(offs, vals.Index(i).Uint())
		}
		out[k.String()] = offs
	}
	return out
}
