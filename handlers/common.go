package handlers

import (
	"context"
	"net/http"

	"jobport/database"
	"jobport/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// vapidPrivateKey is set at startup from the environment (see push.go).
var vapidPrivateKey string

// callerID resolves the authenticated user id set by the JWT middleware.
// Writes the error response itself when the context holds no usable identity.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr := c.GetString("userId")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Not authenticated",
			"message": "Please log in first",
		})
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// fetchUserSummaries loads the referenced users in one $in query and keys
// their summaries by id. Used to populate responses the way the frontend
// expects joined documents.
func fetchUserSummaries(ctx context.Context, ids []primitive.ObjectID, applicantFields bool) (map[primitive.ObjectID]models.UserSummary, error) {
	summaries := make(map[primitive.ObjectID]models.UserSummary)
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	for i := range users {
		if applicantFields {
			summaries[users[i].ID] = users[i].ApplicantSummary()
		} else {
			summaries[users[i].ID] = users[i].Summary()
		}
	}
	return summaries, nil
}

// fetchJobSummaries loads the referenced jobs in one $in query, keyed by id.
func fetchJobSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobSummary, error) {
	summaries := make(map[primitive.ObjectID]models.JobSummary)
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := database.Jobs.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}

	for i := range jobs {
		summaries[jobs[i].ID] = jobs[i].Summary()
	}
	return summaries, nil
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// applicantEntries reshapes applications into a job's derived applicants
// array, attaching user summaries when available.
func applicantEntries(apps []models.Application, users map[primitive.ObjectID]models.UserSummary) []models.ApplicantEntry {
	entries := make([]models.ApplicantEntry, 0, len(apps))
	for i := range apps {
		entry := apps[i].Entry()
		if summary, ok := users[apps[i].Applicant]; ok {
			entry.UserInfo = &summary
		}
		entries = append(entries, entry)
	}
	return entries
}
