package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func contextWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 10},
		{"explicit values", "page=3&limit=25", 3, 25},
		{"zero page clamps to 1", "page=0", 1, 10},
		{"negative limit falls back", "limit=-5", 1, 10},
		{"limit capped at 100", "limit=500", 1, 100},
		{"garbage falls back", "page=abc&limit=xyz", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := parsePagination(contextWithQuery(tt.query))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestBuildPagination(t *testing.T) {
	p := buildPagination(1, 10, 35)
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 4, p.Pages)
	assert.Equal(t, int64(35), p.Total)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = buildPagination(4, 10, 35)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = buildPagination(2, 10, 35)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = buildPagination(1, 10, 0)
	assert.Equal(t, 0, p.Pages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name string
		sort string
		want bson.D
	}{
		{"empty defaults to newest first", "", bson.D{{Key: "createdAt", Value: -1}}},
		{"descending prefix", "-views", bson.D{{Key: "views", Value: -1}}},
		{"ascending", "title", bson.D{{Key: "title", Value: 1}}},
		{"multiple keys", "-views,title", bson.D{{Key: "views", Value: -1}, {Key: "title", Value: 1}}},
		{"blank entries skipped", " , -createdAt", bson.D{{Key: "createdAt", Value: -1}}},
		{"bare dash falls back", "-", bson.D{{Key: "createdAt", Value: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSort(tt.sort))
		})
	}
}
