package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"mindtype/database"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestSubscriptionUpsertOmitsID(t *testing.T) {
	userID := primitive.NewObjectID()
	sub := webpush.Subscription{
		Endpoint: "https://push.example.com/endpoint",
		Keys:     webpush.Keys{P256dh: "p256dh-key", Auth: "auth-key"},
	}

	update := subscriptionUpsert(userID, sub)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.NotContains(t, set, "_id")
	assert.Equal(t, userID, set["userId"])
	assert.Equal(t, sub, set["sub"])
}

func TestSubscribePushResubscribe(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("second subscribe for the same user succeeds", func(mt *mtest.T) {
		database.Subscriptions = mt.Coll
		user := testUser("subscriber")

		body := `{"endpoint":"https://push.example.com/endpoint","keys":{"p256dh":"p","auth":"a"}}`
		register := func(r *gin.Engine) { r.POST("/api/push/subscribe", SubscribePush) }

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		w := performAs(user, http.MethodPost, "/api/push/subscribe", body, register)
		require.Equal(t, http.StatusOK, w.Code)

		w = performAs(user, http.MethodPost, "/api/push/subscribe", body, register)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Push subscription saved successfully")
	})
}

type closeRecorder struct {
	closed bool
}

func (c *closeRecorder) Read(p []byte) (int, error) { return 0, io.EOF }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestFinishPushClosesBody(t *testing.T) {
	body := &closeRecorder{}
	finishPush(context.Background(), primitive.NewObjectID(),
		&http.Response{StatusCode: http.StatusCreated, Body: body}, nil)
	assert.True(t, body.closed)

	body = &closeRecorder{}
	finishPush(context.Background(), primitive.NewObjectID(),
		&http.Response{StatusCode: http.StatusBadRequest, Body: body}, errors.New("push rejected"))
	assert.True(t, body.closed)

	// Nil response must not panic.
	finishPush(context.Background(), primitive.NewObjectID(), nil, errors.New("dial failed"))
}

func TestFinishPushDropsGoneSubscription(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("410 deletes the stored subscription", func(mt *mtest.T) {
		database.Subscriptions = mt.Coll
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		body := &closeRecorder{}
		finishPush(context.Background(), primitive.NewObjectID(),
			&http.Response{StatusCode: http.StatusGone, Body: body}, nil)

		assert.True(t, body.closed)
		events := mt.GetAllStartedEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, "delete", events[len(events)-1].CommandName)
	})
}

func TestTruncateBody(t *testing.T) {
	assert.Equal(t, "short title", truncateBody("short title"))

	long := strings.Repeat("x", 150)
	assert.Equal(t, strings.Repeat("x", 100)+"...", truncateBody(long))

	multi := strings.Repeat("世", 120)
	got := truncateBody(multi)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("世", 100)+"...", got)
}
