package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusInterview = "interview"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusInterview:
		return true
	}
	return false
}

// Application is the source of truth for a seeker's application to a job.
// The unique (job, applicant) index guarantees at most one per pair.
type Application struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Job               primitive.ObjectID `bson:"job" json:"jobId"`
	Applicant         primitive.ObjectID `bson:"applicant" json:"applicantId"`
	ResumeURL         string             `bson:"resumeUrl" json:"resumeUrl"`
	CoverLetter       string             `bson:"coverLetter" json:"coverLetter"`
	Status            string             `bson:"status" json:"status"` // pending, accepted, rejected, interview
	RejectionReason   string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	InterviewDate     int64              `bson:"interviewDate,omitempty" json:"interviewDate,omitempty"`
	InterviewNotes    string             `bson:"interviewNotes,omitempty" json:"interviewNotes,omitempty"`
	RecruiterFeedback string             `bson:"recruiterFeedback,omitempty" json:"recruiterFeedback,omitempty"`
	AppliedAt         int64              `bson:"appliedAt" json:"appliedAt"`
	RespondedAt       int64              `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`

	// Populated in responses only
	JobInfo       *JobSummary  `bson:"-" json:"job,omitempty"`
	ApplicantInfo *UserSummary `bson:"-" json:"applicant,omitempty"`
}

// Entry reshapes an application into a job's derived applicants row.
func (a *Application) Entry() ApplicantEntry {
	return ApplicantEntry{
		User:      a.Applicant,
		Status:    a.Status,
		AppliedAt: a.AppliedAt,
	}
}
