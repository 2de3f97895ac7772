package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReadTimeFor(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty content floors at one minute", "", 1},
		{"single word", "hello", 1},
		{"exactly 200 words", strings.Repeat("word ", 200), 1},
		{"201 words rounds up", strings.Repeat("word ", 201), 2},
		{"400 words", strings.Repeat("word ", 400), 2},
		{"1000 words", strings.Repeat("word ", 1000), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadTimeFor(tt.content))
		})
	}
}

func TestExcerptFor(t *testing.T) {
	short := "A short post body."
	assert.Equal(t, short, ExcerptFor(short))

	exact := strings.Repeat("a", 150)
	assert.Equal(t, exact, ExcerptFor(exact))

	long := strings.Repeat("b", 300)
	got := ExcerptFor(long)
	assert.Equal(t, strings.Repeat("b", 150)+"...", got)
	assert.Len(t, got, 153)
}

func TestExcerptForMultibyte(t *testing.T) {
	// A CJK rune straddling the cut must not be split mid-encoding.
	content := strings.Repeat("a", 149) + strings.Repeat("世", 5)
	got := ExcerptFor(content)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 149)+"世...", got)

	short := strings.Repeat("世", 150)
	assert.Equal(t, short, ExcerptFor(short))
}

func TestRecalculateDerived(t *testing.T) {
	post := Post{Content: strings.Repeat("word ", 250)}
	post.RecalculateDerived()
	assert.Equal(t, 2, post.ReadTime)
	assert.True(t, strings.HasSuffix(post.Excerpt, "..."))

	// An author-supplied excerpt survives recalculation.
	post = Post{Content: strings.Repeat("word ", 250), Excerpt: "Hand-written summary"}
	post.RecalculateDerived()
	assert.Equal(t, "Hand-written summary", post.Excerpt)
}

func TestLikedBy(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	post := Post{Likes: []Like{{User: alice, CreatedAt: time.Now()}}}

	assert.True(t, post.LikedBy(alice))
	assert.False(t, post.LikedBy(bob))
	assert.Equal(t, 1, post.LikeCount())
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"  GoLang ", "WebDev", "", "   ", "design"})
	assert.Equal(t, []string{"golang", "webdev", "design"}, got)

	assert.Empty(t, NormalizeTags(nil))
}

func TestValidPostCategory(t *testing.T) {
	assert.True(t, ValidPostCategory("Technology"))
	assert.True(t, ValidPostCategory("Entertainment"))
	assert.False(t, ValidPostCategory("technology"))
	assert.False(t, ValidPostCategory("Gardening"))
}

func TestValidPostStatus(t *testing.T) {
	assert.True(t, ValidPostStatus(PostStatusDraft))
	assert.True(t, ValidPostStatus(PostStatusPublished))
	assert.True(t, ValidPostStatus(PostStatusArchived))
	assert.False(t, ValidPostStatus("deleted"))
	assert.False(t, ValidPostStatus(""))
}
