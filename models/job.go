package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	JobTypeFullTime = "Full-time"
	JobTypePartTime = "Part-time"
	JobTypeIntern   = "Intern"
	JobTypeContract = "Contract"
)

func IsValidJobType(t string) bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeIntern, JobTypeContract:
		return true
	}
	return false
}

// Job is a posting. There is no stored applicants array: the Applicants
// field is derived from the applications collection at read time, so the
// roster can never disagree with the Application documents.
type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`
	Type        string             `bson:"type" json:"type"` // Full-time, Part-time, Intern, Contract
	Salary      string             `bson:"salary" json:"salary"`
	Skills      []string           `bson:"skills" json:"skills"`
	Recruiter   primitive.ObjectID `bson:"recruiter" json:"recruiterId"`
	CompanyName string             `bson:"companyName" json:"companyName"`
	ViewCount   int64              `bson:"viewCount" json:"viewCount"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int64              `bson:"updatedAt" json:"updatedAt"`

	// Populated in responses only
	RecruiterInfo *UserSummary     `bson:"-" json:"recruiter,omitempty"`
	Applicants    []ApplicantEntry `bson:"-" json:"applicants,omitempty"`

	// Aliases the recruiter dashboard expects. Not omitempty: a job with
	// no applications must still serialize "applications":[] and "views":0.
	Applications []ApplicantEntry `bson:"-" json:"applications"`
	Views        int64            `bson:"-" json:"views"`
}

// ApplicantEntry is one row of a job's derived applicants array.
type ApplicantEntry struct {
	User      primitive.ObjectID `json:"user"`
	Status    string             `json:"status"`
	AppliedAt int64              `json:"appliedAt"`

	UserInfo *UserSummary `json:"userInfo,omitempty"`
}

// JobSummary is the projection embedded in a seeker's application list.
type JobSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	CompanyName string             `json:"companyName"`
	Location    string             `json:"location"`
	Salary      string             `json:"salary"`
	Type        string             `json:"type"`
}

func (j *Job) Summary() JobSummary {
	return JobSummary{
		ID:          j.ID,
		Title:       j.Title,
		CompanyName: j.CompanyName,
		Location:    j.Location,
		Salary:      j.Salary,
		Type:        j.Type,
	}
}
