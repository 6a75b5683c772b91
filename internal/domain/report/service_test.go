package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/medlab/medlab/internal/domain/lab"
	"github.com/medlab/medlab/internal/platform/apperr"
	"github.com/medlab/medlab/internal/platform/docstore"
)

func newTestService(t *testing.T) (*Service, lab.Repository) {
	t.Helper()
	repo := lab.NewDocRepo(docstore.NewMemory())
	return NewService(repo), repo
}

func seedLab(t *testing.T, repo lab.Repository) *lab.Lab {
	t.Helper()
	l := &lab.Lab{
		LabID:    "lab-1",
		LabEmail: "central@example.com",
		LabName:  "Central Lab",
		Reports:  []lab.Report{},
	}
	if err := repo.Upsert(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l
}

func addReport(t *testing.T, svc *Service, labID, patient string) *lab.Report {
	t.Helper()
	r, err := svc.Add(context.Background(), labID, lab.Report{
		PatientName: patient,
		Age:         45,
		Gender:      "Female",
		DateOfTest:  "2026-01-15",
		Tests:       []lab.Test{{TestName: "Blood Test", TestValue: "Normal"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestAddAndListReports(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	ctx := context.Background()

	r := addReport(t, svc, "lab-1", "Jane Doe")
	if r.ReportID == "" {
		t.Error("expected generated report id")
	}

	reports, err := svc.ListForLab(ctx, "lab-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 || reports[0].PatientName != "Jane Doe" {
		t.Errorf("reports = %+v", reports)
	}
}

func TestAddReportMissingLab(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Add(context.Background(), "nope", lab.Report{PatientName: "Jane Doe"})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAddReportValidation(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)

	_, err := svc.Add(context.Background(), "lab-1", lab.Report{PatientName: "", Age: -1})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	reports, _ := svc.ListForLab(context.Background(), "lab-1")
	if len(reports) != 0 {
		t.Errorf("invalid report was stored: %+v", reports)
	}
}

func TestReplaceReport(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	ctx := context.Background()
	r := addReport(t, svc, "lab-1", "Jane Doe")

	updated, err := svc.Replace(ctx, "lab-1", r.ReportID, lab.Report{
		PatientName: "Jane Smith",
		Age:         46,
		Gender:      "Female",
		DateOfTest:  "2026-02-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ReportID != r.ReportID {
		t.Errorf("put changed report id: %q", updated.ReportID)
	}
	if updated.PatientName != "Jane Smith" {
		t.Errorf("PatientName = %q", updated.PatientName)
	}

	if _, err := svc.Replace(ctx, "lab-1", "missing", lab.Report{PatientName: "X"}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPatchReportSparse(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	ctx := context.Background()
	r := addReport(t, svc, "lab-1", "Jane Doe")

	var p lab.ReportPatch
	if err := json.Unmarshal([]byte(`{"gender":"","dateOfTest":"2026-03-01"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patched, err := svc.Patch(ctx, "lab-1", r.ReportID, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patched.Gender != "Female" {
		t.Errorf("empty gender overwrote stored value: %q", patched.Gender)
	}
	if patched.DateOfTest != "2026-03-01" {
		t.Errorf("DateOfTest = %q", patched.DateOfTest)
	}
	if patched.Age != 45 || patched.PatientName != "Jane Doe" {
		t.Errorf("untouched fields changed: %+v", patched)
	}
}

func TestPatchReportNullAge(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	r := addReport(t, svc, "lab-1", "Jane Doe")

	var p lab.ReportPatch
	if err := json.Unmarshal([]byte(`{"age":null}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patched, err := svc.Patch(context.Background(), "lab-1", r.ReportID, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patched.Age != 0 {
		t.Errorf("null age should reset to 0, got %d", patched.Age)
	}
}

func TestPatchReportInvalidAgeNotCommitted(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	ctx := context.Background()
	r := addReport(t, svc, "lab-1", "Jane Doe")

	var p lab.ReportPatch
	if err := json.Unmarshal([]byte(`{"age":-5,"patientName":"Changed"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Patch(ctx, "lab-1", r.ReportID, p); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	reports, _ := svc.ListForLab(ctx, "lab-1")
	if reports[0].PatientName != "Jane Doe" || reports[0].Age != 45 {
		t.Errorf("failed patch partially committed: %+v", reports[0])
	}
}

func TestDeleteOneOfTwoReports(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	ctx := context.Background()

	first := addReport(t, svc, "lab-1", "Jane Doe")
	second := addReport(t, svc, "lab-1", "John Smith")

	if err := svc.Delete(ctx, "lab-1", first.ReportID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reports, _ := svc.ListForLab(ctx, "lab-1")
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].ReportID != second.ReportID {
		t.Errorf("wrong report survived: %+v", reports[0])
	}

	if err := svc.Delete(ctx, "lab-1", first.ReportID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteAllReports(t *testing.T) {
	svc, repo := newTestService(t)
	seedLab(t, repo)
	ctx := context.Background()

	addReport(t, svc, "lab-1", "Jane Doe")
	addReport(t, svc, "lab-1", "John Smith")

	if err := svc.DeleteAll(ctx, "lab-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reports, _ := svc.ListForLab(ctx, "lab-1")
	if len(reports) != 0 {
		t.Errorf("len(reports) = %d, want 0", len(reports))
	}
}
