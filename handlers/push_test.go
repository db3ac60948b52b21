package handlers

import (
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPushSubUpsertDocLeavesIDAlone(t *testing.T) {
	userID := primitive.NewObjectID()
	sub := webpush.Subscription{Endpoint: "https://push.example.com/ep"}

	doc := pushSubUpsertDoc(userID, sub)

	set, ok := doc["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected a $set document, got %v", doc)
	}
	if _, present := set["_id"]; present {
		t.Error("$set must not include _id, re-subscribing would hit the immutable field")
	}
	if set["userId"] != userID {
		t.Errorf("expected userId %v in $set, got %v", userID, set["userId"])
	}
	if got, ok := set["sub"].(webpush.Subscription); !ok || got.Endpoint != sub.Endpoint {
		t.Errorf("expected the subscription in $set, got %v", set["sub"])
	}

	onInsert, ok := doc["$setOnInsert"].(bson.M)
	if !ok {
		t.Fatalf("expected a $setOnInsert document, got %v", doc)
	}
	if _, ok := onInsert["_id"].(primitive.ObjectID); !ok {
		t.Errorf("new subscriptions should get their id via $setOnInsert, got %v", onInsert["_id"])
	}
}
