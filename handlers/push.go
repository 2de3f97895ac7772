package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"mindtype/database"
	"mindtype/middleware"
	"mindtype/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var vapidPrivateKey string

type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

func init() {
	if os.Getenv("VAPID_PUBLIC_KEY") == "" || os.Getenv("VAPID_PRIVATE_KEY") == "" {
		publicKey, privateKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Printf("Failed to generate VAPID keys: %v", err)
			return
		}

		// Dev convenience; production should set these in the environment
		os.Setenv("VAPID_PUBLIC_KEY", publicKey)
		os.Setenv("VAPID_PRIVATE_KEY", privateKey)
		log.Println("Generated new VAPID keys - for production, set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY")
	}

	vapidPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
}

func GetVapidPublicKey(c *gin.Context) {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if publicKey == "" {
		c.JSON(http.StatusOK, gin.H{"message": "VAPID public key not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
}

func SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys: webpush.Keys{
			P256dh: req.Keys.P256dh,
			Auth:   req.Keys.Auth,
		},
	}

	_, err := database.Subscriptions.UpdateOne(ctx,
		bson.M{"userId": user.ID},
		subscriptionUpsert(user.ID, sub),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("Failed to save subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved successfully"})
}

// subscriptionUpsert builds the per-user upsert document. The _id stays out of
// the $set; on a re-subscribe the stored _id is immutable and the update must
// not touch it.
func subscriptionUpsert(userID primitive.ObjectID, sub webpush.Subscription) bson.M {
	return bson.M{"$set": bson.M{"userId": userID, "sub": sub}}
}

// sendPush delivers a notification to one user in the background. Failures
// are logged only; a 410 from the push service removes the stale
// subscription.
func sendPush(userID primitive.ObjectID, title, body, url string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var sub PushSubscription
		err := database.Subscriptions.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
		if err == mongo.ErrNoDocuments {
			return
		}
		if err != nil {
			log.Printf("Failed to find subscription for user %s: %v", userID.Hex(), err)
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"title": title,
			"body":  body,
			"data": map[string]interface{}{
				"url":       url,
				"timestamp": time.Now().Unix(),
			},
		})
		if err != nil {
			log.Printf("Failed to marshal push payload: %v", err)
			return
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      "mailto:admin@mindtype.io",
			VAPIDPrivateKey: vapidPrivateKey,
			TTL:             30,
		})
		finishPush(ctx, userID, resp, err)
	}()
}

// finishPush logs delivery failures, drops subscriptions the push service
// reports gone, and releases the response body on every path.
func finishPush(ctx context.Context, userID primitive.ObjectID, resp *http.Response, err error) {
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		log.Printf("Failed to send push notification to user %s: %v", userID.Hex(), err)
	}
	if resp != nil && resp.StatusCode == http.StatusGone {
		if _, delErr := database.Subscriptions.DeleteOne(ctx, bson.M{"userId": userID}); delErr != nil {
			log.Printf("Failed to delete expired subscription: %v", delErr)
		}
	}
}

func truncateBody(s string) string {
	runes := []rune(s)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return s
}

func notifyLike(post models.Post, liker models.User) {
	sendPush(post.Author,
		liker.Username+" liked your post",
		truncateBody(post.Title),
		"/posts/"+post.ID.Hex())
}

func notifyComment(post models.Post, commenter models.User) {
	sendPush(post.Author,
		commenter.Username+" commented on your post",
		truncateBody(post.Title),
		"/posts/"+post.ID.Hex())
}

func notifyFollow(target, follower models.User) {
	sendPush(target.ID,
		follower.Username+" started following you",
		follower.FullName(),
		"/users/"+follower.ID.Hex())
}
