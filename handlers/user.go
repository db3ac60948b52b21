package handlers

import (
	"context"
	"log"
	"math"
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

type UpdateProfileRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture"`

	// Seeker fields
	ResumeURL  string   `json:"resumeUrl"`
	Skills     []string `json:"skills"`
	Bio        string   `json:"bio"`
	Experience string   `json:"experience"`

	// Recruiter fields
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyLogo        string `json:"companyLogo"`
	CompanyWebsite     string `json:"companyWebsite"`
}

// ApplicationTally is the per-status breakdown used by both dashboards.
type ApplicationTally struct {
	Total     int64
	Accepted  int64
	Rejected  int64
	Pending   int64
	Interview int64
}

// CreateProfile is the idempotent profile-completion call: the account
// already exists from signup, so this returns the caller's document and
// applies the optional name fields.
func CreateProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fields := bson.M{}
	if req.FirstName != "" {
		fields["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		fields["lastName"] = req.LastName
	}

	var user models.User
	var err error
	if len(fields) > 0 {
		fields["updatedAt"] = time.Now().Unix()
		err = database.Users.FindOneAndUpdate(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": fields},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&user)
	} else {
		err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	}
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("[CreateProfile] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Profile created successfully", "user": user})
}

// GetUserProfile returns a profile with both job reference lists populated
// into full job documents.
func GetUserProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("[GetUserProfile] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	appliedJobs, err := findJobsByID(ctx, user.AppliedJobs)
	if err != nil {
		log.Printf("[GetUserProfile] Failed to populate appliedJobs: %v", err)
		appliedJobs = []models.Job{}
	}
	postedJobs, err := findJobsByID(ctx, user.PostedJobs)
	if err != nil {
		log.Printf("[GetUserProfile] Failed to populate postedJobs: %v", err)
		postedJobs = []models.Job{}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                 user.ID.Hex(),
		"email":              user.Email,
		"firstName":          user.FirstName,
		"lastName":           user.LastName,
		"role":               user.Role,
		"profilePicture":     user.ProfilePicture,
		"resumeUrl":          user.ResumeURL,
		"skills":             user.Skills,
		"bio":                user.Bio,
		"experience":         user.Experience,
		"companyName":        user.CompanyName,
		"companyDescription": user.CompanyDescription,
		"companyLogo":        user.CompanyLogo,
		"companyWebsite":     user.CompanyWebsite,
		"appliedJobs":        appliedJobs,
		"postedJobs":         postedJobs,
		"createdAt":          user.CreatedAt,
		"updatedAt":          user.UpdatedAt,
	})
}

// UpdateUserProfile applies a role-gated field whitelist: seeker fields are
// honored only for seekers, company fields only for recruiters.
func UpdateUserProfile(c *gin.Context) {
	user, ok := requireSelf(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := profileUpdateFields(user.Role, req)
	if len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update", "user": user})
		return
	}
	fields["updatedAt"] = time.Now().Unix()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err := database.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		log.Printf("[UpdateUserProfile] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": updated})
}

// GetSeekerApplications lists the caller's applications with job summaries.
func GetSeekerApplications(c *gin.Context) {
	user, ok := requireSelf(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	apps, err := findApplications(ctx, bson.M{"applicant": user.ID})
	if err != nil {
		log.Printf("[GetSeekerApplications] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	if err := populateApplications(ctx, apps, false); err != nil {
		log.Printf("[GetSeekerApplications] Failed to populate applications: %v", err)
	}

	c.JSON(http.StatusOK, apps)
}

// GetSeekerStats returns the five per-status counts for the caller.
func GetSeekerStats(c *gin.Context) {
	user, ok := requireSelf(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := bson.M{"applicant": user.ID}
	total, err := database.Applications.CountDocuments(ctx, base)
	if err != nil {
		log.Printf("[GetSeekerStats] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	counts := map[string]int64{}
	for _, status := range []string{models.StatusAccepted, models.StatusRejected, models.StatusPending, models.StatusInterview} {
		n, err := database.Applications.CountDocuments(ctx, bson.M{"applicant": user.ID, "status": status})
		if err != nil {
			log.Printf("[GetSeekerStats] Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
		counts[status] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"totalApplications":     total,
		"acceptedApplications":  counts[models.StatusAccepted],
		"rejectedApplications":  counts[models.StatusRejected],
		"pendingApplications":   counts[models.StatusPending],
		"interviewApplications": counts[models.StatusInterview],
	})
}

// GetRecruiterAnalytics aggregates the caller's jobs and the applications
// against them into dashboard totals. Applications are the source of truth;
// views come from the job documents.
func GetRecruiterAnalytics(c *gin.Context) {
	user, ok := requireSelf(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Jobs.Find(ctx, bson.M{"recruiter": user.ID})
	if err != nil {
		log.Printf("[GetRecruiterAnalytics] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		log.Printf("[GetRecruiterAnalytics] Decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	jobIDs := make([]primitive.ObjectID, 0, len(jobs))
	var totalViews int64
	for i := range jobs {
		jobIDs = append(jobIDs, jobs[i].ID)
		totalViews += jobs[i].ViewCount
	}

	apps, err := findApplications(ctx, bson.M{"job": bson.M{"$in": jobIDs}})
	if err != nil {
		log.Printf("[GetRecruiterAnalytics] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	tally := tallyApplications(apps)

	c.JSON(http.StatusOK, gin.H{
		"totalJobs":                 len(jobs),
		"totalApplications":         tally.Total,
		"acceptedApplications":      tally.Accepted,
		"rejectedApplications":      tally.Rejected,
		"pendingApplications":       tally.Pending,
		"interviewApplications":     tally.Interview,
		"totalViewCount":            totalViews,
		"averageApplicationsPerJob": averagePerJob(tally.Total, len(jobs)),
	})
}

// GetRecruiterApplicants returns the roster: every application against any
// of the caller's jobs, fully populated.
func GetRecruiterApplicants(c *gin.Context) {
	user, ok := requireSelf(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobIDs, err := recruiterJobIDs(ctx, user.ID)
	if err != nil {
		log.Printf("[GetRecruiterApplicants] Failed to load jobs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applicants"})
		return
	}

	apps, err := findApplications(ctx, bson.M{"job": bson.M{"$in": jobIDs}})
	if err != nil {
		log.Printf("[GetRecruiterApplicants] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applicants"})
		return
	}

	if err := populateApplications(ctx, apps, true); err != nil {
		log.Printf("[GetRecruiterApplicants] Failed to populate applications: %v", err)
	}

	c.JSON(http.StatusOK, apps)
}

// GetJobApplicants lists the applicants for one of the caller's jobs with
// the fuller seeker profile fields.
func GetJobApplicants(c *gin.Context) {
	recruiterID, ok := callerID(c)
	if !ok {
		return
	}

	jobID, err := primitive.ObjectIDFromHex(c.Param("jobId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var job models.Job
	err = database.Jobs.FindOne(ctx, bson.M{"_id": jobID}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		log.Printf("[GetJobApplicants] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}
	if job.Recruiter != recruiterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	apps, err := findApplications(ctx, bson.M{"job": jobID})
	if err != nil {
		log.Printf("[GetJobApplicants] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applicants"})
		return
	}

	if err := populateApplications(ctx, apps, true); err != nil {
		log.Printf("[GetJobApplicants] Failed to populate applications: %v", err)
	}

	c.JSON(http.StatusOK, apps)
}

// profileUpdateFields builds the $set document for a profile update,
// honoring only the fields allowed for the given role.
func profileUpdateFields(role string, req UpdateProfileRequest) bson.M {
	fields := bson.M{}

	if req.FirstName != "" {
		fields["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		fields["lastName"] = req.LastName
	}
	if req.ProfilePicture != "" {
		fields["profilePicture"] = req.ProfilePicture
	}

	switch role {
	case models.RoleSeeker:
		if req.ResumeURL != "" {
			fields["resumeUrl"] = req.ResumeURL
		}
		if req.Skills != nil {
			fields["skills"] = req.Skills
		}
		if req.Bio != "" {
			fields["bio"] = req.Bio
		}
		if req.Experience != "" {
			fields["experience"] = req.Experience
		}
	case models.RoleRecruiter:
		if req.CompanyName != "" {
			fields["companyName"] = req.CompanyName
		}
		if req.CompanyDescription != "" {
			fields["companyDescription"] = req.CompanyDescription
		}
		if req.CompanyLogo != "" {
			fields["companyLogo"] = req.CompanyLogo
		}
		if req.CompanyWebsite != "" {
			fields["companyWebsite"] = req.CompanyWebsite
		}
	}

	return fields
}

// tallyApplications sums the per-status counts over a list of applications.
func tallyApplications(apps []models.Application) ApplicationTally {
	var tally ApplicationTally
	for i := range apps {
		tally.Total++
		switch apps[i].Status {
		case models.StatusAccepted:
			tally.Accepted++
		case models.StatusRejected:
			tally.Rejected++
		case models.StatusPending:
			tally.Pending++
		case models.StatusInterview:
			tally.Interview++
		}
	}
	return tally
}

// averagePerJob rounds to one decimal place; zero jobs yields zero.
func averagePerJob(totalApplications int64, totalJobs int) float64 {
	if totalJobs == 0 {
		return 0
	}
	return math.Round(float64(totalApplications)/float64(totalJobs)*10) / 10
}

// requireSelf loads the :userId profile and verifies it is the caller.
func requireSelf(c *gin.Context) (models.User, bool) {
	var user models.User

	selfID, ok := callerID(c)
	if !ok {
		return user, false
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return user, false
	}
	if userID != selfID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return user, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return user, false
	}
	if err != nil {
		log.Printf("[requireSelf] Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return user, false
	}

	return user, true
}

// findJobsByID loads full job documents for a reference list, keeping the
// list's order where possible.
func findJobsByID(ctx context.Context, ids []primitive.ObjectID) ([]models.Job, error) {
	jobs := []models.Job{}
	if len(ids) == 0 {
		return jobs, nil
	}

	cursor, err := database.Jobs.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
