package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"mindtype/database"
	"mindtype/middleware"
	"mindtype/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreatePostRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	Content       string `json:"content" binding:"required,min=10"`
	Excerpt       string `json:"excerpt" binding:"max=300"`
	Image         string `json:"image"`
	Category      string `json:"category" binding:"required"`
	Tags          string `json:"tags"`
	Status        string `json:"status"`
	Featured      *bool  `json:"featured"`
	AllowComments *bool  `json:"allowComments"`
}

type UpdatePostRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt"`
	Image         *string `json:"image"`
	Category      *string `json:"category"`
	Tags          *string `json:"tags"`
	Status        *string `json:"status"`
	Featured      *bool   `json:"featured"`
	AllowComments *bool   `json:"allowComments"`
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// GetPosts returns a page of posts matching the optional filters. Status
// defaults to published; search runs against the text index.
func GetPosts(c *gin.Context) {
	page, limit := parsePagination(c)

	query := bson.M{"status": c.DefaultQuery("status", models.PostStatusPublished)}
	if category := c.Query("category"); category != "" {
		query["category"] = category
	}
	if author := c.Query("author"); author != "" {
		authorID, err := primitive.ObjectIDFromHex(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid author ID"})
			return
		}
		query["author"] = authorID
	}
	if search := c.Query("search"); search != "" {
		query["$text"] = bson.M{"$search": search}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().
		SetSort(parseSort(c.Query("sort"))).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := database.Posts.Find(ctx, query, findOpts)
	if err != nil {
		log.Printf("Get posts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		log.Printf("Get posts decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	total, err := database.Posts.CountDocuments(ctx, query)
	if err != nil {
		log.Printf("Count posts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.Author)
	}
	briefs, err := fetchUserBriefs(ctx, authorIDs)
	if err != nil {
		log.Printf("Populate authors error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		items = append(items, postListItem(p, briefs[p.Author]))
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      items,
		"pagination": buildPagination(page, limit, total),
	})
}

// GetPost fetches one post and unconditionally increments its view counter.
// Every read counts, with no per-viewer dedup.
func GetPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("Get post error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post"})
		return
	}

	ids := []primitive.ObjectID{post.Author}
	for _, cm := range post.Comments {
		ids = append(ids, cm.User)
	}
	briefs, err := fetchUserBriefs(ctx, ids)
	if err != nil {
		log.Printf("Populate post users error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postDetail(post, briefs[post.Author], briefs)})
}

func CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if !models.ValidPostCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}
	status := req.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	if !models.ValidPostStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	now := time.Now()
	post := models.Post{
		ID:            primitive.NewObjectID(),
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Image:         req.Image,
		Category:      req.Category,
		Tags:          models.NormalizeTags(strings.Split(req.Tags, ",")),
		Author:        user.ID,
		Status:        status,
		Featured:      req.Featured != nil && *req.Featured,
		AllowComments: req.AllowComments == nil || *req.AllowComments,
		Likes:         []models.Like{},
		Comments:      []models.Comment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	post.RecalculateDerived()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("Create post error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create post"})
		return
	}

	// Second, independently-failable write: link the post into the author's
	// posts array. A failure here is logged, not rolled back.
	_, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$push": bson.M{"posts": post.ID}},
	)
	if err != nil {
		log.Printf("Link post to author error: %v", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    postListItem(post, user.Brief()),
	})
}

func UpdatePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("Update post fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update post"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if post.Author != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this post"})
		return
	}

	contentChanged := false
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" || len(*req.Title) > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title must be between 1 and 200 characters"})
			return
		}
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		if len(*req.Content) < 10 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Content must be at least 10 characters long"})
			return
		}
		post.Content = *req.Content
		contentChanged = true
	}
	if req.Excerpt != nil {
		if len(*req.Excerpt) > 300 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Excerpt cannot exceed 300 characters"})
			return
		}
		post.Excerpt = *req.Excerpt
	}
	if req.Image != nil {
		post.Image = *req.Image
	}
	if req.Category != nil {
		if !models.ValidPostCategory(*req.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
			return
		}
		post.Category = *req.Category
	}
	if req.Tags != nil {
		post.Tags = models.NormalizeTags(strings.Split(*req.Tags, ","))
	}
	if req.Status != nil {
		if !models.ValidPostStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
			return
		}
		post.Status = *req.Status
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.AllowComments != nil {
		post.AllowComments = *req.AllowComments
	}

	if contentChanged {
		post.ReadTime = models.ReadTimeFor(post.Content)
		if post.Excerpt == "" {
			post.Excerpt = models.ExcerptFor(post.Content)
		}
	}
	post.UpdatedAt = time.Now()

	if _, err := database.Posts.ReplaceOne(ctx, bson.M{"_id": postID}, post); err != nil {
		log.Printf("Update post error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    postListItem(post, user.Brief()),
	})
}

func DeletePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("Delete post fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if post.Author != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this post"})
		return
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		log.Printf("Delete post error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	_, err = database.Users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$pull": bson.M{"posts": postID}},
	)
	if err != nil {
		log.Printf("Unlink post from author error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// LikePost toggles the acting user's like on a post: present removes,
// absent appends. The read-modify-write on the likes array is last-write-wins
// under concurrent toggles.
func LikePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("Like post fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to like/unlike post"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	wasLiked := post.LikedBy(user.ID)

	var update bson.M
	if wasLiked {
		update = bson.M{"$pull": bson.M{"likes": bson.M{"user": user.ID}}}
	} else {
		update = bson.M{"$push": bson.M{"likes": models.Like{User: user.ID, CreatedAt: time.Now()}}}
	}

	var updated models.Post
	err = database.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("Like post update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to like/unlike post"})
		return
	}

	message := "Post liked"
	if wasLiked {
		message = "Post unliked"
	} else if post.Author != user.ID {
		notifyLike(post, user)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"likeCount": updated.LikeCount(),
		"isLiked":   !wasLiked,
	})
}

// AddComment appends a comment to a post that allows comments.
func AddComment(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("Add comment fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add comment"})
		return
	}

	if !post.AllowComments {
		c.JSON(http.StatusForbidden, gin.H{"message": "Comments are not allowed on this post"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	now := time.Now()
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      user.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = database.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		log.Printf("Add comment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add comment"})
		return
	}

	if post.Author != user.ID {
		notifyComment(post, user)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": populatedComment{
			ID:        comment.ID.Hex(),
			User:      user.Brief(),
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
		},
	})
}

// GetUserPosts lists one author's posts, newest first, optionally filtered
// by status.
func GetUserPosts(c *gin.Context) {
	authorID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	page, limit := parsePagination(c)

	query := bson.M{"author": authorID}
	if status := c.Query("status"); status != "" {
		query["status"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := database.Posts.Find(ctx, query, findOpts)
	if err != nil {
		log.Printf("Get user posts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		log.Printf("Get user posts decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user posts"})
		return
	}

	total, err := database.Posts.CountDocuments(ctx, query)
	if err != nil {
		log.Printf("Count user posts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user posts"})
		return
	}

	briefs, err := fetchUserBriefs(ctx, []primitive.ObjectID{authorID})
	if err != nil {
		log.Printf("Populate author error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user posts"})
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		items = append(items, postListItem(p, briefs[authorID]))
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      items,
		"pagination": buildPagination(page, limit, total),
	})
}
