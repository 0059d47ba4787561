package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Platformer", "platformer"},
		{"spaces", "Hollow Knight", "hollow-knight"},
		{"punctuation", "Hollow Knight: Silksong!", "hollow-knight-silksong"},
		{"diacritics", "Pokémon Café", "pokemon-cafe"},
		{"underscores", "space_invaders  2", "space-invaders-2"},
		{"hyphens", "--Half--Life--", "half-life"},
		{"no latin", "Тетрис", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.title))
		})
	}
}

func TestGenerate_ProducesValidSlugs(t *testing.T) {
	for _, title := range []string{"Platformer", "Doom (1993)", "Ori and the Will of the Wisps"} {
		assert.True(t, Valid(Generate(title)), title)
	}
}

func TestGenerate_Truncates(t *testing.T) {
	got := Generate(strings.Repeat("a", MaxLength+10))
	assert.Len(t, got, MaxLength)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("platformer"))
	assert.True(t, Valid("half-life-2"))

	assert.False(t, Valid(""))
	assert.False(t, Valid("Platformer"))
	assert.False(t, Valid("half life"))
	assert.False(t, Valid("-platformer"))
	assert.False(t, Valid("platformer-"))
	assert.False(t, Valid("half--life"))
	assert.False(t, Valid("<script>"))
	assert.False(t, Valid(strings.Repeat("a", MaxLength+1)))
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "platformer-2", WithSuffix("platformer", 2))

	long := WithSuffix(strings.Repeat("a", MaxLength), 12)
	assert.Len(t, long, MaxLength)
	assert.True(t, strings.HasSuffix(long, "-12"))
}
