package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleSeeker    = "seeker"
	RoleRecruiter = "recruiter"
)

// User is a single document for both roles; seeker and recruiter fields
// coexist and profile updates only honor the ones matching the role.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"passwordHash" json:"-"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	Role           string             `bson:"role" json:"role"` // seeker, recruiter
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`

	// Seeker fields
	ResumeURL  string   `bson:"resumeUrl" json:"resumeUrl"`
	Skills     []string `bson:"skills" json:"skills"`
	Bio        string   `bson:"bio" json:"bio"`
	Experience string   `bson:"experience" json:"experience"`

	// Recruiter fields
	CompanyName        string `bson:"companyName" json:"companyName"`
	CompanyDescription string `bson:"companyDescription" json:"companyDescription"`
	CompanyLogo        string `bson:"companyLogo" json:"companyLogo"`
	CompanyWebsite     string `bson:"companyWebsite" json:"companyWebsite"`

	AppliedJobs []primitive.ObjectID `bson:"appliedJobs" json:"appliedJobs"`
	PostedJobs  []primitive.ObjectID `bson:"postedJobs" json:"postedJobs"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"` // Unix timestamp
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the projection embedded in populated responses.
type UserSummary struct {
	ID         primitive.ObjectID `json:"id"`
	FirstName  string             `json:"firstName"`
	LastName   string             `json:"lastName"`
	Email      string             `json:"email"`
	ResumeURL  string             `json:"resumeUrl,omitempty"`
	Skills     []string           `json:"skills,omitempty"`
	Bio        string             `json:"bio,omitempty"`
	Experience string             `json:"experience,omitempty"`

	// Recruiter-side summaries only carry the company name.
	CompanyName string `json:"companyName,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		CompanyName: u.CompanyName,
	}
}

// ApplicantSummary adds the seeker profile fields a recruiter reviews.
func (u *User) ApplicantSummary() UserSummary {
	s := u.Summary()
	s.ResumeURL = u.ResumeURL
	s.Skills = u.Skills
	s.Bio = u.Bio
	s.Experience = u.Experience
	return s
}
