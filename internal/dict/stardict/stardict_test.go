package stardict

import (
	"testing"

	"github.com/ianlewis/go-stardict/dict"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	got := render([]*dict.Data{
		{Type: dict.UTFTextType, Data: []byte("line one\r\n<two>")},
		{Type: dict.HTMLType, Data: []byte("<b>bold</b>")},
		{Type: dict.PhoneticType, Data: []byte("a&b")},
		{Type: 'W', Data: []byte{0x52, 0x49, 0x46, 0x46}},
		{Type: dict.UTFTextType, Data: []byte("   ")},
	})
	assert.Equal(t, "line one<br>&lt;two&gt;\n<b>bold</b>\na&amp;b", got)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir() + "/none.ifo")
	assert.Error(t, err)
}
