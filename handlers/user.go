package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"mindtype/database"
	"mindtype/middleware"
	"mindtype/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
}

// GetUser returns a public profile plus aggregated stats over the user's
// published posts.
func GetUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Get user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "author", Value: userID},
			{Key: "status", Value: models.PostStatusPublished},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalPosts", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalViews", Value: bson.D{{Key: "$sum", Value: "$views"}}},
			{Key: "totalLikes", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$size", Value: "$likes"}}}}},
		}}},
	}

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("User stats aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}
	defer cursor.Close(ctx)

	var agg []struct {
		TotalPosts int64 `bson:"totalPosts"`
		TotalViews int64 `bson:"totalViews"`
		TotalLikes int64 `bson:"totalLikes"`
	}
	if err := cursor.All(ctx, &agg); err != nil {
		log.Printf("User stats decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}

	stats := gin.H{"posts": int64(0), "views": int64(0), "likes": int64(0)}
	if len(agg) > 0 {
		stats["posts"] = agg[0].TotalPosts
		stats["views"] = agg[0].TotalViews
		stats["likes"] = agg[0].TotalLikes
	}
	stats["followers"] = len(user.Followers)
	stats["following"] = len(user.Following)

	c.JSON(http.StatusOK, gin.H{"user": user, "stats": stats})
}

// UpdateProfile applies only the fields present in the payload.
func UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.FirstName != nil {
		if *req.FirstName == "" || len(*req.FirstName) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "First name must be between 1 and 50 characters"})
			return
		}
		set["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" || len(*req.LastName) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Last name must be between 1 and 50 characters"})
			return
		}
		set["lastName"] = *req.LastName
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Bio cannot exceed 500 characters"})
			return
		}
		set["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}

	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := database.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": set},
		mongoAfter(),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Update profile error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

// FollowUser toggles the follow relationship between the acting user and the
// target. The two array mutations are independent single-document writes; a
// crash between them leaves the relationship asymmetric.
func FollowUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if targetID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You cannot follow yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var target models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Follow fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to follow/unfollow user"})
		return
	}

	isFollowing := false
	for _, id := range user.Following {
		if id == targetID {
			isFollowing = true
			break
		}
	}

	var myUpdate, targetUpdate bson.M
	if isFollowing {
		myUpdate = bson.M{"$pull": bson.M{"following": targetID}}
		targetUpdate = bson.M{"$pull": bson.M{"followers": user.ID}}
	} else {
		myUpdate = bson.M{"$addToSet": bson.M{"following": targetID}}
		targetUpdate = bson.M{"$addToSet": bson.M{"followers": user.ID}}
	}

	if _, err := database.Users.UpdateOne(ctx, bson.M{"_id": user.ID}, myUpdate); err != nil {
		log.Printf("Follow update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to follow/unfollow user"})
		return
	}

	var updatedTarget models.User
	err = database.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID}, targetUpdate, mongoAfter(),
	).Decode(&updatedTarget)
	if err != nil {
		log.Printf("Follow target update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to follow/unfollow user"})
		return
	}

	message := "User followed"
	if isFollowing {
		message = "User unfollowed"
	} else {
		notifyFollow(target, user)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        message,
		"isFollowing":    !isFollowing,
		"followersCount": len(updatedTarget.Followers),
	})
}

func GetFollowers(c *gin.Context) {
	listRelations(c, "followers")
}

func GetFollowing(c *gin.Context) {
	listRelations(c, "following")
}

func listRelations(c *gin.Context, field string) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Get %s error: %v", field, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch " + field})
		return
	}

	ids := user.Followers
	if field == "following" {
		ids = user.Following
	}

	briefs, err := fetchUserBriefs(ctx, ids)
	if err != nil {
		log.Printf("Populate %s error: %v", field, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch " + field})
		return
	}

	out := make([]models.UserBrief, 0, len(ids))
	for _, id := range ids {
		if b, ok := briefs[id]; ok {
			out = append(out, b)
		}
	}

	c.JSON(http.StatusOK, gin.H{field: out})
}

// UploadAvatar pushes the multipart image to Cloudinary and stores the
// returned secure URL on the profile.
func UploadAvatar(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	avatarFile, _, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No avatar file provided"})
		return
	}
	defer avatarFile.Close()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		log.Printf("Cloudinary config error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Media storage not configured"})
		return
	}

	uploadParams := uploader.UploadParams{
		Folder:         "mindtype/avatars",
		PublicID:       user.ID.Hex(),
		Transformation: "c_limit,w_400,h_400,q_auto",
	}

	uploadResult, err := cld.Upload.Upload(ctx, avatarFile, uploadParams)
	if err != nil {
		log.Printf("Avatar upload error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload avatar"})
		return
	}

	_, err = database.Users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"avatar": uploadResult.SecureURL, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("Avatar save error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": uploadResult.SecureURL})
}
