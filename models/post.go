package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

var PostCategories = []string{
	"Technology", "Design", "Travel", "Lifestyle", "Business",
	"Health", "Food", "Fashion", "Sports", "Entertainment",
}

type Like struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	Excerpt       string             `bson:"excerpt" json:"excerpt"`
	Image         string             `bson:"image" json:"image"`
	Category      string             `bson:"category" json:"category"`
	Tags          []string           `bson:"tags" json:"tags"`
	Author        primitive.ObjectID `bson:"author" json:"author"`
	Status        string             `bson:"status" json:"status"`
	Featured      bool               `bson:"featured" json:"featured"`
	AllowComments bool               `bson:"allowComments" json:"allowComments"`
	Views         int64              `bson:"views" json:"views"`
	Likes         []Like             `bson:"likes" json:"likes"`
	Comments      []Comment          `bson:"comments" json:"comments"`
	ReadTime      int                `bson:"readTime" json:"readTime"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	wordsPerMinute = 200
	excerptLength  = 150
)

// ReadTimeFor estimates reading minutes at 200 words/minute, never below 1.
func ReadTimeFor(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ExcerptFor derives a list-view excerpt: the first 150 characters plus an
// ellipsis when the content runs longer, the full content otherwise.
// Truncation counts runes so a multibyte character never gets split.
func ExcerptFor(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLength {
		return string(runes[:excerptLength]) + "..."
	}
	return content
}

// RecalculateDerived refreshes readTime and, when no author-supplied excerpt
// exists, the excerpt. Called whenever content changes.
func (p *Post) RecalculateDerived() {
	p.ReadTime = ReadTimeFor(p.Content)
	if p.Excerpt == "" {
		p.Excerpt = ExcerptFor(p.Content)
	}
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

func (p *Post) CommentCount() int {
	return len(p.Comments)
}

// LikedBy reports whether the given user has a like entry on the post.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

func ValidPostCategory(category string) bool {
	for _, c := range PostCategories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// NormalizeTags trims and lowercases, dropping empties.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
