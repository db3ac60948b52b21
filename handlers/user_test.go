package handlers

import (
	"reflect"
	"testing"

	"jobport/models"

	"go.mongodb.org/mongo-driver/bson"
)

func TestProfileUpdateFieldsSeeker(t *testing.T) {
	req := UpdateProfileRequest{
		FirstName:   "Ada",
		ResumeURL:   "https://example.com/resume.pdf",
		Skills:      []string{"go", "mongodb"},
		Bio:         "Backend developer",
		CompanyName: "Should Be Ignored Inc",
	}

	fields := profileUpdateFields(models.RoleSeeker, req)

	want := bson.M{
		"firstName": "Ada",
		"resumeUrl": "https://example.com/resume.pdf",
		"skills":    []string{"go", "mongodb"},
		"bio":       "Backend developer",
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %v want %v", fields, want)
	}
}

func TestProfileUpdateFieldsRecruiter(t *testing.T) {
	req := UpdateProfileRequest{
		LastName:       "Lovelace",
		CompanyName:    "Analytical Engines",
		CompanyWebsite: "https://engines.example.com",
		ResumeURL:      "should be ignored",
		Bio:            "should be ignored",
	}

	fields := profileUpdateFields(models.RoleRecruiter, req)

	want := bson.M{
		"lastName":       "Lovelace",
		"companyName":    "Analytical Engines",
		"companyWebsite": "https://engines.example.com",
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %v want %v", fields, want)
	}
}

func TestTallyApplications(t *testing.T) {
	apps := []models.Application{
		{Status: models.StatusPending},
		{Status: models.StatusPending},
		{Status: models.StatusAccepted},
		{Status: models.StatusRejected},
		{Status: models.StatusInterview},
		{Status: models.StatusInterview},
	}

	tally := tallyApplications(apps)

	if tally.Total != 6 {
		t.Errorf("total = %d, want 6", tally.Total)
	}
	if tally.Pending != 2 || tally.Accepted != 1 || tally.Rejected != 1 || tally.Interview != 2 {
		t.Errorf("unexpected tally: %+v", tally)
	}
}

func TestTallyApplicationsEmpty(t *testing.T) {
	if tally := tallyApplications(nil); tally.Total != 0 {
		t.Errorf("empty list should tally zero, got %+v", tally)
	}
}

func TestAveragePerJob(t *testing.T) {
	cases := []struct {
		apps int64
		jobs int
		want float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{5, 2, 2.5},
		{7, 3, 2.3},
		{10, 4, 2.5},
	}
	for _, tc := range cases {
		if got := averagePerJob(tc.apps, tc.jobs); got != tc.want {
			t.Errorf("averagePerJob(%d, %d) = %v, want %v", tc.apps, tc.jobs, got, tc.want)
		}
	}
}
