package lab

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/medlab/medlab/internal/platform/apperr"
)

func fakeHash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func sampleLab() *Lab {
	return &Lab{
		LabID:        "1",
		LabEmail:     "central@example.com",
		PasswordHash: "hashed:old",
		LabName:      "Central Lab",
		LabAddress:   "123 Main Street",
		Reports:      []Report{},
	}
}

func TestPatchAppliesNonEmptyFields(t *testing.T) {
	l := sampleLab()
	p := Patch{LabName: "Renamed Lab", LabAddress: "456 Oak Avenue"}

	if err := p.Apply(l, fakeHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.LabName != "Renamed Lab" {
		t.Errorf("LabName = %q", l.LabName)
	}
	if l.LabAddress != "456 Oak Avenue" {
		t.Errorf("LabAddress = %q", l.LabAddress)
	}
	if l.LabEmail != "central@example.com" {
		t.Errorf("empty patch field overwrote LabEmail: %q", l.LabEmail)
	}
	if l.PasswordHash != "hashed:old" {
		t.Errorf("empty password cleared stored credential: %q", l.PasswordHash)
	}
}

func TestPatchEmptyFieldsPreserveState(t *testing.T) {
	l := sampleLab()
	if err := (Patch{}).Apply(l, fakeHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := *sampleLab()
	if l.LabName != want.LabName || l.LabEmail != want.LabEmail ||
		l.LabAddress != want.LabAddress || l.PasswordHash != want.PasswordHash {
		t.Errorf("empty patch changed the lab: %+v", l)
	}
}

func TestPatchIdempotent(t *testing.T) {
	l := sampleLab()
	p := Patch{LabName: "Renamed Lab", Password: "new-pass"}

	if err := p.Apply(l, fakeHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := *l
	if err := p.Apply(l, fakeHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.LabName != first.LabName || l.PasswordHash != first.PasswordHash {
		t.Errorf("second apply diverged: %+v vs %+v", l, first)
	}
}

func TestPatchRehashesPassword(t *testing.T) {
	l := sampleLab()
	if err := (Patch{Password: "new-secret"}).Apply(l, fakeHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.PasswordHash != "hashed:new-secret" {
		t.Errorf("PasswordHash = %q", l.PasswordHash)
	}
}

func TestReportPatchAgePresence(t *testing.T) {
	base := Report{ReportID: "r1", PatientName: "Jane Doe", Age: 45, Gender: "Female"}

	// Absent age keeps the stored value.
	var absent ReportPatch
	if err := json.Unmarshal([]byte(`{"gender":"Male"}`), &absent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := base
	if err := absent.Apply(&r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Age != 45 {
		t.Errorf("absent age changed value: %d", r.Age)
	}
	if r.Gender != "Male" {
		t.Errorf("Gender = %q", r.Gender)
	}

	// Explicit null resets to zero.
	var null ReportPatch
	if err := json.Unmarshal([]byte(`{"age":null}`), &null); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r = base
	if err := null.Apply(&r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Age != 0 {
		t.Errorf("null age should reset to 0, got %d", r.Age)
	}

	// Numeric value is applied.
	var set ReportPatch
	if err := json.Unmarshal([]byte(`{"age":60}`), &set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r = base
	if err := set.Apply(&r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Age != 60 {
		t.Errorf("Age = %d, want 60", r.Age)
	}
}

func TestReportPatchRejectsNegativeAge(t *testing.T) {
	var p ReportPatch
	if err := json.Unmarshal([]byte(`{"age":-1,"gender":"Male"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := Report{ReportID: "r1", PatientName: "Jane Doe", Age: 45, Gender: "Female"}
	err := p.Apply(&r)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if r.Age != 45 || r.Gender != "Female" {
		t.Errorf("failed patch partially applied: %+v", r)
	}
}

func TestReportPatchEmptyStringsPreserved(t *testing.T) {
	var p ReportPatch
	if err := json.Unmarshal([]byte(`{"gender":""}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := Report{ReportID: "r1", PatientName: "Jane Doe", Age: 45, Gender: "Female"}
	if err := p.Apply(&r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Gender != "Female" {
		t.Errorf("empty gender overwrote stored value: %q", r.Gender)
	}
}

func TestLabValidate(t *testing.T) {
	l := sampleLab()
	if err := l.Validate(); err != nil {
		t.Errorf("valid lab rejected: %v", err)
	}

	l.LabEmail = "no-at-sign"
	l.LabName = ""
	err := l.Validate()
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var e *apperr.Error
	if !errors.As(err, &e) || len(e.Fields) != 2 {
		t.Errorf("Fields = %v, want labEmail and labName", e.Fields)
	}
}

func TestReportValidate(t *testing.T) {
	r := Report{PatientName: "Jane Doe", Age: 45}
	if err := r.Validate(); err != nil {
		t.Errorf("valid report rejected: %v", err)
	}

	r = Report{PatientName: "", Age: -2}
	if err := r.Validate(); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSummaryOmitsPasswordHash(t *testing.T) {
	data, err := json.Marshal(sampleLab().ToSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var fields map[string]interface{}
	json.Unmarshal(data, &fields)
	if _, ok := fields["passwordHash"]; ok {
		t.Error("summary must not expose the password hash")
	}
}
