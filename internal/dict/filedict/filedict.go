package filedict

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagerenn/mdxlookup/internal/dict"
)

const maxLineSize = 16 << 20

// TSVScanner reads "headword<delim>definition" lines. Blank lines and lines
// starting with '#' are not records. The definition is kept as written;
// lines without a headword or definition are counted by Skipped.
type TSVScanner struct {
	f         *os.File
	sc        *bufio.Scanner
	delimiter string
	cur       dict.Entry
	skipped   int64
}

func OpenTSV(path, delimiter string) (*TSVScanner, error) {
	if delimiter == "" {
		delimiter = "\t"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &TSVScanner{f: f, sc: sc, delimiter: delimiter}, nil
}

func (s *TSVScanner) Scan() bool {
	for s.sc.Scan() {
		line := strings.TrimSuffix(s.sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		word, def, ok := strings.Cut(line, s.delimiter)
		word = strings.TrimSpace(word)
		if !ok || word == "" || def == "" {
			s.skipped++
			continue
		}
		s.cur = dict.Entry{Word: word, Definition: def}
		return true
	}
	return false
}

func (s *TSVScanner) Entry() dict.Entry { return s.cur }

func (s *TSVScanner) Err() error { return s.sc.Err() }

func (s *TSVScanner) Skipped() int64 { return s.skipped }

func (s *TSVScanner) Close() error { return s.f.Close() }

// JSONScanner streams a top-level JSON array of {"word", "definition"}
// objects without decoding the whole document at once.
type JSONScanner struct {
	f       *os.File
	dec     *json.Decoder
	cur     dict.Entry
	err     error
	skipped int64
}

func OpenJSON(path string) (*JSONScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bufio.NewReader(f))
	tok, err := dec.Token()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		_ = f.Close()
		return nil, fmt.Errorf("read %s: expected JSON array", path)
	}
	return &JSONScanner{f: f, dec: dec}, nil
}

func (s *JSONScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.dec.More() {
		var e dict.Entry
		if err := s.dec.Decode(&e); err != nil {
			s.err = err
			return false
		}
		word := strings.TrimSpace(e.Word)
		if word == "" || e.Definition == "" {
			s.skipped++
			continue
		}
		s.cur = dict.Entry{Word: word, Definition: e.Definition}
		return true
	}
	if _, err := s.dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return false
}

func (s *JSONScanner) Entry() dict.Entry { return s.cur }

func (s *JSONScanner) Err() error { return s.err }

func (s *JSONScanner) Skipped() int64 { return s.skipped }

func (s *JSONScanner) Close() error { return s.f.Close() }

// Open picks the TSV or JSON reader from typ, falling back to the file
// extension when typ is empty.
func Open(path, typ, delimiter string) (dict.Scanner, error) {
	switch strings.ToLower(typ) {
	case "tsv", "tab", "txt":
		return OpenTSV(path, delimiter)
	case "json":
		return OpenJSON(path)
	case "":
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			return OpenJSON(path)
		}
		return OpenTSV(path, delimiter)
	default:
		return nil, errors.New("unsupported dictionary type: " + typ)
	}
}
