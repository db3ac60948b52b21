package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"jobport/database"
	"jobport/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApplyRequest struct {
	JobID       string `json:"jobId"`
	ResumeURL   string `json:"resumeUrl"`
	CoverLetter string `json:"coverLetter"`
}

type UpdateStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	InterviewDate     int64  `json:"interviewDate"`
	InterviewNotes    string `json:"interviewNotes"`
	RejectionReason   string `json:"rejectionReason"`
	RecruiterFeedback string `json:"recruiterFeedback"`
}

// ApplyForJob handles POST /api/applications; the job id comes in the body.
func ApplyForJob(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: jobId"})
		return
	}
	applyToJob(c, req.JobID, req.ResumeURL, req.CoverLetter)
}

// ApplyForJobByID handles POST /api/jobs/:id/apply. The body is optional:
// resume and cover letter may be omitted.
func ApplyForJobByID(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applyToJob(c, c.Param("id"), req.ResumeURL, req.CoverLetter)
}

// applyToJob inserts the Application document. The unique (job, applicant)
// index is the duplicate guard; the appliedJobs reference is patched after
// the source of truth has committed.
func applyToJob(c *gin.Context, jobIDStr, resumeURL, coverLetter string) {
	applicantID, ok := callerID(c)
	if !ok {
		return
	}

	jobID, err := primitive.ObjectIDFromHex(jobIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var job models.Job
	err = database.Jobs.FindOne(ctx, bson.M{"_id": jobID, "isActive": true}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		log.Printf("[ApplyForJob] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}

	var applicant models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": applicantID}).Decode(&applicant); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Applicant user not found"})
		return
	}

	if resumeURL == "" {
		resumeURL = applicant.ResumeURL
	}

	application := models.Application{
		ID:          primitive.NewObjectID(),
		Job:         jobID,
		Applicant:   applicantID,
		ResumeURL:   resumeURL,
		CoverLetter: coverLetter,
		Status:      models.StatusPending,
		AppliedAt:   time.Now().Unix(),
	}

	if _, err := database.Applications.InsertOne(ctx, application); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already applied for this job"})
			return
		}
		log.Printf("[ApplyForJob] Failed to insert application: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	_, err = database.Users.UpdateOne(ctx,
		bson.M{"_id": applicantID},
		bson.M{"$push": bson.M{"appliedJobs": jobID}},
	)
	if err != nil {
		log.Printf("[ApplyForJob] Failed to record job %s in appliedJobs: %v", jobID.Hex(), err)
	}

	jobSummary := job.Summary()
	applicantSummary := applicant.Summary()
	application.JobInfo = &jobSummary
	application.ApplicantInfo = &applicantSummary

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": application,
	})
}

// GetApplications lists every application against the caller's jobs.
func GetApplications(c *gin.Context) {
	recruiterID, ok := callerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobIDs, err := recruiterJobIDs(ctx, recruiterID)
	if err != nil {
		log.Printf("[GetApplications] Failed to load jobs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	apps, err := findApplications(ctx, bson.M{"job": bson.M{"$in": jobIDs}})
	if err != nil {
		log.Printf("[GetApplications] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	if err := populateApplications(ctx, apps, true); err != nil {
		log.Printf("[GetApplications] Failed to populate applications: %v", err)
	}

	c.JSON(http.StatusOK, apps)
}

// GetApplicationByID returns one application to its applicant or to the
// recruiter owning the job.
func GetApplicationByID(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := primitive.ObjectIDFromHex(c.Param("appId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var application models.Application
	err = database.Applications.FindOne(ctx, bson.M{"_id": appID}).Decode(&application)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if err != nil {
		log.Printf("[GetApplicationByID] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	if application.Applicant != userID {
		var job models.Job
		if err := database.Jobs.FindOne(ctx, bson.M{"_id": application.Job}).Decode(&job); err != nil || job.Recruiter != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
			return
		}
	}

	apps := []models.Application{application}
	if err := populateApplications(ctx, apps, true); err != nil {
		log.Printf("[GetApplicationByID] Failed to populate application: %v", err)
	}

	c.JSON(http.StatusOK, apps[0])
}

// UpdateApplicationStatus sets the status and response fields on the
// Application document. There is no stored mirror to propagate to: every
// roster view derives from this document. The applicant is notified by push.
func UpdateApplicationStatus(c *gin.Context) {
	recruiterID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := primitive.ObjectIDFromHex(c.Param("appId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var application models.Application
	err = database.Applications.FindOne(ctx, bson.M{"_id": appID}).Decode(&application)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if err != nil {
		log.Printf("[UpdateApplicationStatus] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	var job models.Job
	if err := database.Jobs.FindOne(ctx, bson.M{"_id": application.Job}).Decode(&job); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.Recruiter != recruiterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	update := bson.M{
		"status":      req.Status,
		"respondedAt": time.Now().Unix(),
	}
	if req.InterviewDate != 0 {
		update["interviewDate"] = req.InterviewDate
	}
	if req.InterviewNotes != "" {
		update["interviewNotes"] = req.InterviewNotes
	}
	if req.RejectionReason != "" {
		update["rejectionReason"] = req.RejectionReason
	}
	if req.RecruiterFeedback != "" {
		update["recruiterFeedback"] = req.RecruiterFeedback
	}

	err = database.Applications.FindOneAndUpdate(ctx,
		bson.M{"_id": appID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&application)
	if err != nil {
		log.Printf("[UpdateApplicationStatus] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	SendApplicationStatusPush(application.Applicant, job.Title, req.Status)

	apps := []models.Application{application}
	if err := populateApplications(ctx, apps, true); err != nil {
		log.Printf("[UpdateApplicationStatus] Failed to populate application: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application status updated",
		"application": apps[0],
	})
}

// WithdrawApplication deletes the caller's application. The Application is
// removed first; the appliedJobs reference patch follows.
func WithdrawApplication(c *gin.Context) {
	applicantID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := primitive.ObjectIDFromHex(c.Param("appId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var application models.Application
	err = database.Applications.FindOne(ctx, bson.M{"_id": appID}).Decode(&application)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if err != nil {
		log.Printf("[WithdrawApplication] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		return
	}

	if application.Applicant != applicantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	if _, err := database.Applications.DeleteOne(ctx, bson.M{"_id": appID}); err != nil {
		log.Printf("[WithdrawApplication] Failed to delete application: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw application"})
		return
	}

	_, err = database.Users.UpdateOne(ctx,
		bson.M{"_id": applicantID},
		bson.M{"$pull": bson.M{"appliedJobs": application.Job}},
	)
	if err != nil {
		log.Printf("[WithdrawApplication] Failed to remove job %s from appliedJobs: %v", application.Job.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn successfully"})
}

// GetJobApplications lists applications for one of the caller's jobs.
func GetJobApplications(c *gin.Context) {
	job, ok := requireOwnedJob(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	apps, err := findApplications(ctx, bson.M{"job": job.ID})
	if err != nil {
		log.Printf("[GetJobApplications] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	if err := populateApplications(ctx, apps, true); err != nil {
		log.Printf("[GetJobApplications] Failed to populate applications: %v", err)
	}

	c.JSON(http.StatusOK, apps)
}

// findApplications runs a filtered query sorted newest first.
func findApplications(ctx context.Context, filter bson.M) ([]models.Application, error) {
	cursor, err := database.Applications.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "appliedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	apps := []models.Application{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// populateApplications attaches job and applicant summaries in place.
func populateApplications(ctx context.Context, apps []models.Application, applicantFields bool) error {
	jobIDs := make([]primitive.ObjectID, 0, len(apps))
	userIDs := make([]primitive.ObjectID, 0, len(apps))
	for i := range apps {
		jobIDs = append(jobIDs, apps[i].Job)
		userIDs = append(userIDs, apps[i].Applicant)
	}

	jobs, err := fetchJobSummaries(ctx, jobIDs)
	if err != nil {
		return err
	}
	users, err := fetchUserSummaries(ctx, userIDs, applicantFields)
	if err != nil {
		return err
	}

	for i := range apps {
		if j, ok := jobs[apps[i].Job]; ok {
			apps[i].JobInfo = &j
		}
		if u, ok := users[apps[i].Applicant]; ok {
			apps[i].ApplicantInfo = &u
		}
	}
	return nil
}

// recruiterJobIDs returns the ids of every job owned by the recruiter,
// active or not.
func recruiterJobIDs(ctx context.Context, recruiterID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := database.Jobs.Find(ctx, bson.M{"recruiter": recruiterID})
	if err != nil {
		return nil, err
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(jobs))
	for i := range jobs {
		ids = append(ids, jobs[i].ID)
	}
	return ids, nil
}
