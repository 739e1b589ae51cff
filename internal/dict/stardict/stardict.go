package stardict

import (
	"fmt"
	"html"
	"strings"

	std "github.com/ianlewis/go-stardict"
	"github.com/ianlewis/go-stardict/dict"
	"github.com/ianlewis/go-stardict/idx"

	gd "github.com/sagerenn/mdxlookup/internal/dict"
)

type indexScanner interface {
	Scan() bool
	Word() *idx.Word
	Err() error
	Close() error
}

// Scanner walks a StarDict .idx file in order and reads each article from
// the .dict file as it goes.
type Scanner struct {
	sd   *std.Stardict
	dict *dict.Dict
	sc   indexScanner
	cur  gd.Entry
	err  error
}

func Open(ifoPath string) (*Scanner, error) {
	sd, err := std.Open(ifoPath, nil)
	if err != nil {
		return nil, err
	}
	d, err := sd.Dict()
	if err != nil {
		return nil, err
	}
	sc, err := sd.IndexScanner()
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return &Scanner{sd: sd, dict: d, sc: sc}, nil
}

func (s *Scanner) Scan() bool {
	if s.err != nil || !s.sc.Scan() {
		return false
	}
	w := s.sc.Word()
	word, err := s.dict.Word(w)
	if err != nil {
		s.err = fmt.Errorf("read article %q: %w", w.Word, err)
		return false
	}
	s.cur = gd.Entry{Word: w.Word, Definition: render(word.Data)}
	return true
}

func (s *Scanner) Entry() gd.Entry { return s.cur }

func (s *Scanner) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.sc.Err()
}

func (s *Scanner) Close() error {
	err := s.sc.Close()
	if cerr := s.dict.Close(); err == nil {
		err = cerr
	}
	return err
}

func render(data []*dict.Data) string {
	var b strings.Builder
	for _, d := range data {
		s := strings.TrimSpace(renderData(d))
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
	}
	return b.String()
}

func renderData(d *dict.Data) string {
	switch d.Type {
	case dict.HTMLType, dict.XDXFType:
		return string(d.Data)
	case dict.UTFTextType, dict.LocaleTextType, dict.PangoTextType:
		return preformat(string(d.Data))
	case dict.PhoneticType, dict.YinBiaoOrKataType, dict.MediaWikiType, dict.WordNetType, dict.PowerWordType:
		return html.EscapeString(string(d.Data))
	default:
		if d.Type >= 'a' && d.Type <= 'z' {
			return html.EscapeString(string(d.Data))
		}
		// File-like data (sounds, pictures) has no textual form.
		return ""
	}
}

func preformat(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = html.EscapeString(s)
	return strings.ReplaceAll(s, "\n", "<br>")
}
