package dsl

import (
	"bufio"
	"os"
	"strings"

	"github.com/sagerenn/mdxlookup/internal/dict"
)

// Scanner reads ABBYY Lingvo DSL source files: a headword on an unindented
// line followed by indented definition lines. Lines starting with '#' are
// directives and are ignored. Only the indentation is stripped from body
// lines; headwords without a body are counted by Skipped.
type Scanner struct {
	f        *os.File
	sc       *bufio.Scanner
	word     string
	defLines []string
	pending  []dict.Entry
	cur      dict.Entry
	done     bool
	skipped  int64
}

func Open(path string) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	return &Scanner{f: f, sc: sc}, nil
}

func (s *Scanner) flush() {
	if s.word == "" {
		s.defLines = nil
		return
	}
	def := strings.Join(s.defLines, "\n")
	s.defLines = nil
	if def == "" {
		s.skipped++
		return
	}
	s.pending = append(s.pending, dict.Entry{Word: s.word, Definition: def})
}

func (s *Scanner) Scan() bool {
	for len(s.pending) == 0 && !s.done {
		if !s.sc.Scan() {
			s.flush()
			s.word = ""
			s.done = true
			break
		}
		line := s.sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			s.flush()
			s.word = ""
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if s.word != "" {
				s.defLines = append(s.defLines, strings.TrimLeft(line, " \t"))
			}
			continue
		}
		s.flush()
		s.word = strings.TrimSpace(line)
	}
	if len(s.pending) == 0 {
		return false
	}
	s.cur = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

func (s *Scanner) Entry() dict.Entry { return s.cur }

func (s *Scanner) Err() error { return s.sc.Err() }

func (s *Scanner) Skipped() int64 { return s.skipped }

func (s *Scanner) Close() error { return s.f.Close() }
