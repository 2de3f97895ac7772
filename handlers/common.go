package handlers

import (
	"context"
	"strconv"
	"strings"

	"mindtype/database"
	"mindtype/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func buildPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: int64(page*limit) < total,
		HasPrev: page > 1,
	}
}

// parseSort turns the API's "-createdAt" style sort key into a Mongo sort
// document. A leading "-" means descending; multiple keys may be comma
// separated.
func parseSort(sort string) bson.D {
	if sort == "" {
		sort = "-createdAt"
	}
	var out bson.D
	for _, key := range strings.Split(sort, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(key, "-") {
			dir = -1
			key = key[1:]
		}
		if key != "" {
			out = append(out, bson.E{Key: key, Value: dir})
		}
	}
	if len(out) == 0 {
		out = bson.D{{Key: "createdAt", Value: -1}}
	}
	return out
}

// fetchUserBriefs loads the author projections for a set of user ids in one
// query. Missing users simply stay absent from the map.
func fetchUserBriefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserBrief, error) {
	briefs := make(map[primitive.ObjectID]models.UserBrief)
	if len(ids) == 0 {
		return briefs, nil
	}

	seen := make(map[primitive.ObjectID]bool, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	projection := bson.M{"username": 1, "firstName": 1, "lastName": 1, "avatar": 1, "bio": 1}
	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": unique}},
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserBrief
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		briefs[u.ID] = u
	}
	return briefs, nil
}

func mongoAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// postBriefFindOptions projects the compact post listing shown on profile
// surfaces (title, status, views, createdAt), newest first.
func postBriefFindOptions() *options.FindOptions {
	return options.Find().
		SetProjection(bson.M{"title": 1, "status": 1, "views": 1, "createdAt": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// postListItem shapes a post for list responses: populated author brief plus
// computed like/comment counts, without the embedded arrays.
func postListItem(p models.Post, author models.UserBrief) gin.H {
	return gin.H{
		"id":            p.ID.Hex(),
		"title":         p.Title,
		"excerpt":       p.Excerpt,
		"image":         p.Image,
		"category":      p.Category,
		"tags":          p.Tags,
		"author":        author,
		"status":        p.Status,
		"featured":      p.Featured,
		"allowComments": p.AllowComments,
		"views":         p.Views,
		"likeCount":     p.LikeCount(),
		"commentCount":  p.CommentCount(),
		"readTime":      p.ReadTime,
		"createdAt":     p.CreatedAt,
		"updatedAt":     p.UpdatedAt,
	}
}

type populatedComment struct {
	ID        string           `json:"id"`
	User      models.UserBrief `json:"user"`
	Content   string           `json:"content"`
	CreatedAt interface{}      `json:"createdAt"`
	UpdatedAt interface{}      `json:"updatedAt"`
}

// postDetail shapes a single post with comment authors populated.
func postDetail(p models.Post, author models.UserBrief, commenters map[primitive.ObjectID]models.UserBrief) gin.H {
	comments := make([]populatedComment, 0, len(p.Comments))
	for _, cm := range p.Comments {
		comments = append(comments, populatedComment{
			ID:        cm.ID.Hex(),
			User:      commenters[cm.User],
			Content:   cm.Content,
			CreatedAt: cm.CreatedAt,
			UpdatedAt: cm.UpdatedAt,
		})
	}

	item := postListItem(p, author)
	item["content"] = p.Content
	item["likes"] = p.Likes
	item["comments"] = comments
	return item
}
