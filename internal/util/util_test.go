package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	p := Ptr("bad key")
	assert.Equal(t, "bad key", *p)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "haiku", Truncate("haiku", 10))
	assert.Equal(t, "Write a…", Truncate("Write a Haiku", 8))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "日本…", Truncate("日本語テキスト", 3))
	assert.Equal(t, "unchanged", Truncate("unchanged", 0))
}
