package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sagerenn/mdxlookup/internal/config"
	"github.com/sagerenn/mdxlookup/internal/dict"
	"github.com/sagerenn/mdxlookup/internal/dict/dsl"
	"github.com/sagerenn/mdxlookup/internal/dict/filedict"
	"github.com/sagerenn/mdxlookup/internal/dict/mdict"
	"github.com/sagerenn/mdxlookup/internal/dict/stardict"
)

// Open returns an entry scanner for the dictionary file described by d.
func Open(d config.DictConfig) (dict.Scanner, error) {
	if strings.TrimSpace(d.Path) == "" {
		return nil, fmt.Errorf("dictionary %q missing path", d.ID)
	}
	typ := strings.ToLower(strings.TrimSpace(d.Type))
	if typ == "" {
		typ = DetectType(d.Path)
	}
	switch typ {
	case "tsv", "tab", "txt", "json":
		return filedict.Open(d.Path, typ, d.Delimiter)
	case "dsl":
		return dsl.Open(d.Path)
	case "stardict", "ifo":
		return stardict.Open(d.Path)
	case "mdict", "mdx":
		return mdict.Open(d.Path)
	default:
		return nil, fmt.Errorf("unsupported dictionary type: %q", typ)
	}
}

func DetectType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ifo":
		return "stardict"
	case ".mdx":
		return "mdict"
	case ".dsl":
		return "dsl"
	case ".json":
		return "json"
	case ".tsv", ".txt":
		return "tsv"
	default:
		return ""
	}
}
