package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"jobport/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJobSearchFilterEmpty(t *testing.T) {
	filter := jobSearchFilter("", "", "", "")
	if !reflect.DeepEqual(filter, bson.M{"isActive": true}) {
		t.Fatalf("empty search should only filter on isActive, got %v", filter)
	}
}

func TestJobSearchFilterKeyword(t *testing.T) {
	filter := jobSearchFilter("backend", "", "", "")

	or, ok := filter["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or clause, got %v", filter)
	}
	if len(or) != 3 {
		t.Fatalf("keyword should match title, description and companyName, got %d clauses", len(or))
	}
	regex, ok := or[0]["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on title, got %v", or[0])
	}
	if regex.Pattern != "backend" || regex.Options != "i" {
		t.Errorf("keyword regex should be case-insensitive, got %+v", regex)
	}
}

func TestJobSearchFilterLocationAndType(t *testing.T) {
	filter := jobSearchFilter("", "Remote", "Full-time", "")

	regex, ok := filter["location"].(primitive.Regex)
	if !ok || regex.Pattern != "Remote" || regex.Options != "i" {
		t.Errorf("location should be a case-insensitive regex, got %v", filter["location"])
	}
	if filter["type"] != "Full-time" {
		t.Errorf("type should match exactly, got %v", filter["type"])
	}
	if _, present := filter["$or"]; present {
		t.Error("no keyword given, $or should be absent")
	}
}

func TestJobSearchFilterSkills(t *testing.T) {
	filter := jobSearchFilter("", "", "", "go, mongodb , ,docker")

	in, ok := filter["skills"].(bson.M)
	if !ok {
		t.Fatalf("expected skills clause, got %v", filter)
	}
	want := []string{"go", "mongodb", "docker"}
	if !reflect.DeepEqual(in["$in"], want) {
		t.Errorf("skills should be split and trimmed, got %v want %v", in["$in"], want)
	}
}

func TestJobSearchFilterBlankSkills(t *testing.T) {
	filter := jobSearchFilter("", "", "", " , ,")
	if _, present := filter["skills"]; present {
		t.Errorf("blank skills list should not add a clause, got %v", filter)
	}
}

func TestJobUpdateFieldsWhitelist(t *testing.T) {
	fields := jobUpdateFields(UpdateJobRequest{
		Title:  "Senior Backend Engineer",
		Salary: "120k",
		Skills: []string{"go"},
	})

	want := bson.M{
		"title":  "Senior Backend Engineer",
		"salary": "120k",
		"skills": []string{"go"},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("got %v want %v", fields, want)
	}
}

func TestIsValidJobType(t *testing.T) {
	for _, jt := range []string{"Full-time", "Part-time", "Intern", "Contract"} {
		if !models.IsValidJobType(jt) {
			t.Errorf("%q should be valid", jt)
		}
	}
	for _, jt := range []string{"", "full-time", "Freelance"} {
		if models.IsValidJobType(jt) {
			t.Errorf("%q should be invalid", jt)
		}
	}
}

func TestJobUpdateFieldsEmpty(t *testing.T) {
	if fields := jobUpdateFields(UpdateJobRequest{}); len(fields) != 0 {
		t.Errorf("empty request should produce no updates, got %v", fields)
	}
}

func TestCreateJobRejectsUnknownType(t *testing.T) {
	body := `{"title":"Backend Engineer","location":"Remote","companyName":"Acme","type":"Freelance"}`
	c, w := newHandlerContext(t, http.MethodPost, "/api/jobs", body)
	c.Set("userId", primitive.NewObjectID().Hex())

	CreateJob(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Invalid job type") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestRecruiterJobAliasesAlwaysSerialized(t *testing.T) {
	job := models.Job{
		ID:           primitive.NewObjectID(),
		Title:        "Backend Engineer",
		Applications: applicantEntries(nil, nil),
	}

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"applications":[]`) {
		t.Errorf("a job without applications should serialize an empty array, got %s", data)
	}
	if !strings.Contains(string(data), `"views":0`) {
		t.Errorf("views should always be present, got %s", data)
	}
}

