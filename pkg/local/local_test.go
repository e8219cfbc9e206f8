package local

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := map[string]Language{
		"ru":    Rus,
		"ru-RU": Rus,
		"RU":    Rus,
		"en-GB": Eng,
		"hi":    Eng,
		"":      Eng,
	}
	for code, want := range tests {
		assert.Equal(t, want, ParseLanguage(code), "code %q", code)
	}
}

func TestTextSet(t *testing.T) {
	set := NewSet("Error: %s", NewTrans(Rus, "Ошибка: %s"))

	assert.Equal(t, "Error: %s", set.Text(Eng))
	assert.Equal(t, "Ошибка: %s", set.Text(Rus))
	assert.Equal(t, "Error: timeout", set.Format(Eng, "timeout"))
	assert.Equal(t, "Ошибка: timeout", set.Format(Rus, "timeout"))
	assert.Equal(t, "Error: timeout", set.DefaultFormat("timeout"))
}
