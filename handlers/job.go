package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"jobport/database"
	"jobport/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreateJobRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location" binding:"required"`
	Type        string   `json:"type"`
	Salary      string   `json:"salary"`
	Skills      []string `json:"skills"`
	CompanyName string   `json:"companyName" binding:"required"`
}

type UpdateJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	Salary      string   `json:"salary"`
	Skills      []string `json:"skills"`
	CompanyName string   `json:"companyName"`
}

// CreateJob inserts a posting owned by the authenticated recruiter and
// records the id in the recruiter's postedJobs list.
func CreateJob(c *gin.Context) {
	recruiterID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if req.Description == "" {
		req.Description = req.Title + " position"
	}
	if req.Type == "" {
		req.Type = models.JobTypeFullTime
	}
	if !models.IsValidJobType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job type"})
		return
	}
	if req.Salary == "" {
		req.Salary = "Competitive"
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}

	now := time.Now().Unix()
	job := models.Job{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Type:        req.Type,
		Salary:      req.Salary,
		Skills:      req.Skills,
		Recruiter:   recruiterID,
		CompanyName: req.CompanyName,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := database.Jobs.InsertOne(ctx, job); err != nil {
		log.Printf("[CreateJob] Failed to insert job: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return
	}

	// The postedJobs list is convenience data; derived views never depend
	// on it, so a failure here is logged but does not fail the request.
	_, err := database.Users.UpdateOne(ctx,
		bson.M{"_id": recruiterID},
		bson.M{"$push": bson.M{"postedJobs": job.ID}},
	)
	if err != nil {
		log.Printf("[CreateJob] Failed to record job %s in postedJobs: %v", job.ID.Hex(), err)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Job posted successfully", "job": job})
}

// GetJobs lists active jobs, newest first, with recruiter summaries attached.
func GetJobs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Jobs.Find(ctx,
		bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		log.Printf("[GetJobs] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
		return
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		log.Printf("[GetJobs] Decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
		return
	}

	if err := populateRecruiters(ctx, jobs); err != nil {
		log.Printf("[GetJobs] Failed to populate recruiters: %v", err)
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJobByID returns one active job and atomically increments its view
// counter as part of the read.
func GetJobByID(c *gin.Context) {
	jobID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var job models.Job
	err = database.Jobs.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID, "isActive": true},
		bson.M{"$inc": bson.M{"viewCount": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&job)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		log.Printf("[GetJobByID] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}

	if summaries, err := fetchUserSummaries(ctx, []primitive.ObjectID{job.Recruiter}, false); err == nil {
		if s, ok := summaries[job.Recruiter]; ok {
			job.RecruiterInfo = &s
		}
	}

	if entries, err := deriveApplicants(ctx, job.ID, false); err != nil {
		log.Printf("[GetJobByID] Failed to derive applicants for %s: %v", job.ID.Hex(), err)
	} else {
		job.Applicants = entries
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJob applies a whitelisted field update after an ownership check.
func UpdateJob(c *gin.Context) {
	job, ok := requireOwnedJob(c)
	if !ok {
		return
	}

	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != "" && !models.IsValidJobType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job type"})
		return
	}

	fields := jobUpdateFields(req)
	if len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}
	fields["updatedAt"] = time.Now().Unix()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.Job
	err := database.Jobs.FindOneAndUpdate(ctx,
		bson.M{"_id": job.ID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("[UpdateJob] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job updated successfully", "job": updated})
}

// DeleteJob soft-deletes: the document stays (applications against it keep
// their history) but it disappears from every read path.
func DeleteJob(c *gin.Context) {
	job, ok := requireOwnedJob(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.Jobs.UpdateOne(ctx,
		bson.M{"_id": job.ID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().Unix()}},
	)
	if err != nil {
		log.Printf("[DeleteJob] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job"})
		return
	}

	_, err = database.Users.UpdateOne(ctx,
		bson.M{"_id": job.Recruiter},
		bson.M{"$pull": bson.M{"postedJobs": job.ID}},
	)
	if err != nil {
		log.Printf("[DeleteJob] Failed to remove job %s from postedJobs: %v", job.ID.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// SearchJobs filters active jobs by keyword, location, type and skills.
// Results are capped at 50, newest first.
func SearchJobs(c *gin.Context) {
	filter := jobSearchFilter(
		c.Query("keyword"),
		c.Query("location"),
		c.Query("type"),
		c.Query("skills"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Jobs.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(50),
	)
	if err != nil {
		log.Printf("[SearchJobs] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search jobs"})
		return
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		log.Printf("[SearchJobs] Decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search jobs"})
		return
	}

	if err := populateRecruiters(ctx, jobs); err != nil {
		log.Printf("[SearchJobs] Failed to populate recruiters: %v", err)
	}

	c.JSON(http.StatusOK, jobs)
}

// GetRecruiterJobs lists all of the caller's jobs with the derived
// applications array and the views alias the dashboard expects.
func GetRecruiterJobs(c *gin.Context) {
	callerIDVal, ok := callerID(c)
	if !ok {
		return
	}

	recruiterID, err := primitive.ObjectIDFromHex(c.Param("recruiterId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recruiter ID"})
		return
	}
	if recruiterID != callerIDVal {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Jobs.Find(ctx,
		bson.M{"recruiter": recruiterID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		log.Printf("[GetRecruiterJobs] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
		return
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		log.Printf("[GetRecruiterJobs] Decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
		return
	}

	jobIDs := make([]primitive.ObjectID, 0, len(jobs))
	for i := range jobs {
		jobIDs = append(jobIDs, jobs[i].ID)
	}

	apps, err := findApplications(ctx, bson.M{"job": bson.M{"$in": jobIDs}})
	if err != nil {
		log.Printf("[GetRecruiterJobs] Failed to load applications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
		return
	}

	applicantIDs := make([]primitive.ObjectID, 0, len(apps))
	for i := range apps {
		applicantIDs = append(applicantIDs, apps[i].Applicant)
	}
	users, err := fetchUserSummaries(ctx, applicantIDs, false)
	if err != nil {
		log.Printf("[GetRecruiterJobs] Failed to populate applicants: %v", err)
		users = map[primitive.ObjectID]models.UserSummary{}
	}

	byJob := make(map[primitive.ObjectID][]models.Application)
	for i := range apps {
		byJob[apps[i].Job] = append(byJob[apps[i].Job], apps[i])
	}

	for i := range jobs {
		entries := applicantEntries(byJob[jobs[i].ID], users)
		jobs[i].Applicants = entries
		jobs[i].Applications = entries
		jobs[i].Views = jobs[i].ViewCount
	}

	c.JSON(http.StatusOK, jobs)
}

// jobSearchFilter builds the Mongo filter for the search endpoint. Keyword
// matches title, description and company name case-insensitively; location
// is a case-insensitive match; type is exact; skills intersect.
func jobSearchFilter(keyword, location, jobType, skills string) bson.M {
	filter := bson.M{"isActive": true}

	if keyword != "" {
		regex := primitive.Regex{Pattern: keyword, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": regex},
			{"description": regex},
			{"companyName": regex},
		}
	}

	if location != "" {
		filter["location"] = primitive.Regex{Pattern: location, Options: "i"}
	}

	if jobType != "" {
		filter["type"] = jobType
	}

	if skills != "" {
		parts := strings.Split(skills, ",")
		list := make([]string, 0, len(parts))
		for _, s := range parts {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		if len(list) > 0 {
			filter["skills"] = bson.M{"$in": list}
		}
	}

	return filter
}

// jobUpdateFields maps the editable request fields onto a $set document.
func jobUpdateFields(req UpdateJobRequest) bson.M {
	fields := bson.M{}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}
	if req.Type != "" {
		fields["type"] = req.Type
	}
	if req.Salary != "" {
		fields["salary"] = req.Salary
	}
	if req.Skills != nil {
		fields["skills"] = req.Skills
	}
	if req.CompanyName != "" {
		fields["companyName"] = req.CompanyName
	}
	return fields
}

// requireOwnedJob loads the :id job and verifies the caller owns it.
// Responds and returns ok=false on any failure.
func requireOwnedJob(c *gin.Context) (models.Job, bool) {
	var job models.Job

	recruiterID, ok := callerID(c)
	if !ok {
		return job, false
	}

	jobID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return job, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = database.Jobs.FindOne(ctx, bson.M{"_id": jobID}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return job, false
	}
	if err != nil {
		log.Printf("[requireOwnedJob] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return job, false
	}

	if job.Recruiter != recruiterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return job, false
	}

	return job, true
}

// populateRecruiters attaches recruiter summaries in place.
func populateRecruiters(ctx context.Context, jobs []models.Job) error {
	ids := make([]primitive.ObjectID, 0, len(jobs))
	for i := range jobs {
		ids = append(ids, jobs[i].Recruiter)
	}

	summaries, err := fetchUserSummaries(ctx, ids, false)
	if err != nil {
		return err
	}

	for i := range jobs {
		if s, ok := summaries[jobs[i].Recruiter]; ok {
			jobs[i].RecruiterInfo = &s
		}
	}
	return nil
}

// deriveApplicants computes a job's applicants array from the applications
// collection, the single source of truth for application status.
func deriveApplicants(ctx context.Context, jobID primitive.ObjectID, applicantFields bool) ([]models.ApplicantEntry, error) {
	apps, err := findApplications(ctx, bson.M{"job": jobID})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(apps))
	for i := range apps {
		ids = append(ids, apps[i].Applicant)
	}
	users, err := fetchUserSummaries(ctx, ids, applicantFields)
	if err != nil {
		return nil, err
	}

	return applicantEntries(apps, users), nil
}
