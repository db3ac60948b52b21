package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"jobport/database"
	"jobport/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	// Generate throwaway VAPID keys for development when none are
	// configured. Production deployments must set these.
	if os.Getenv("VAPID_PUBLIC_KEY") == "" || os.Getenv("VAPID_PRIVATE_KEY") == "" {
		privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Printf("Failed to generate VAPID keys: %v", err)
			return
		}

		os.Setenv("VAPID_PUBLIC_KEY", publicKey)
		os.Setenv("VAPID_PRIVATE_KEY", privateKey)

		log.Println("Generated new VAPID keys - for production, set these as environment variables:")
		log.Printf("   VAPID_PUBLIC_KEY: %s", publicKey)
	}

	vapidPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
}

func GetVapidPublicKey(c *gin.Context) {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if publicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "VAPID public key not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
}

// SubscribePush upserts the caller's browser push subscription.
func SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys: webpush.Keys{
			P256dh: req.Keys.P256dh,
			Auth:   req.Keys.Auth,
		},
	}

	_, err := database.PushSubs.UpdateOne(ctx,
		bson.M{"userId": userID},
		pushSubUpsertDoc(userID, sub),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("[SubscribePush] Failed to save subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved successfully"})
}

// pushSubUpsertDoc builds the update document for saving a subscription.
// On re-subscribe the filter matches an existing document, and MongoDB
// rejects any $set that touches _id, so the id only goes in $setOnInsert.
func pushSubUpsertDoc(userID primitive.ObjectID, sub webpush.Subscription) bson.M {
	return bson.M{
		"$set": bson.M{
			"userId": userID,
			"sub":    sub,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
}

// SendPushNotification delivers a notification to the user's subscribed
// browser, if any. Runs in the background; delivery failures only log.
func SendPushNotification(userID primitive.ObjectID, title, body, url string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var sub models.PushSubscription
		err := database.PushSubs.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
		if err == mongo.ErrNoDocuments {
			return
		}
		if err != nil {
			log.Printf("Failed to find subscription for user %s: %v", userID.Hex(), err)
			return
		}

		payload := map[string]interface{}{
			"title": title,
			"body":  body,
			"data": map[string]interface{}{
				"url":       url,
				"timestamp": time.Now().Unix(),
			},
		}

		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Failed to marshal push payload: %v", err)
			return
		}

		resp, err := webpush.SendNotification(payloadBytes, &sub.Sub, &webpush.Options{
			Subscriber:      "mailto:admin@jobport.app",
			VAPIDPrivateKey: vapidPrivateKey,
			TTL:             30,
		})
		if err != nil {
			log.Printf("Failed to send push notification to user %s: %v", userID.Hex(), err)

			// Expired subscription, drop it
			if resp != nil && resp.StatusCode == http.StatusGone {
				if _, delErr := database.PushSubs.DeleteOne(ctx, bson.M{"userId": userID}); delErr != nil {
					log.Printf("Failed to delete expired subscription: %v", delErr)
				}
			}
			return
		}
		resp.Body.Close()
	}()
}

// SendApplicationStatusPush notifies a seeker that a recruiter responded to
// their application.
func SendApplicationStatusPush(applicantID primitive.ObjectID, jobTitle, status string) {
	title, body := statusPushMessage(jobTitle, status)
	SendPushNotification(applicantID, title, body, "/applications")
}

func statusPushMessage(jobTitle, status string) (string, string) {
	switch status {
	case models.StatusInterview:
		return "Interview invitation", "You have been invited to interview for " + jobTitle
	case models.StatusAccepted:
		return "Application accepted", "Congratulations! Your application for " + jobTitle + " was accepted"
	case models.StatusRejected:
		return "Application update", "Your application for " + jobTitle + " was not successful"
	default:
		return "Application update", "Your application for " + jobTitle + " is " + status
	}
}
