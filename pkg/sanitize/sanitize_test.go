package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello  ", "hello"},
		{"empty", "   ", ""},
		{"bold", "<b>bold</b> text", "bold text"},
		{"script", "<script>alert(1)</script>hi", "hi"},
		{"entities survive as text", "Tom & Jerry", "Tom & Jerry"},
		{"void tags", "<i>x</i><br/>y", "xy"},
		{"escaped script", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"escaped tag around text", "&lt;b&gt;bold&lt;/b&gt; text", "bold text"},
		{"double escaped tag", "&amp;lt;i&amp;gt;x&amp;lt;/i&amp;gt;", "x"},
		{"comparison survives", "a < b", "a < b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "<script")
			assert.Equal(t, got, Text(got), "Text must be idempotent")
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "card-number", Key("card-number"))
	assert.Equal(t, "first name_1", Key("first name_1"))
	assert.Equal(t, "scriptx", Key("<script>x"))
	assert.Equal(t, "", Key("ключ"))
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;&amp;&#34;&#39;", EscapeHTML(`<b>&"'`))
	assert.Equal(t, "a\uFFFDb", EscapeHTML("a\x80\x80\xffb"))
}

func TestJoinValues(t *testing.T) {
	assert.Equal(t, "a, b", JoinValues([]string{"a", "b"}))
	assert.Equal(t, "a", JoinValues([]string{"a"}))
}
