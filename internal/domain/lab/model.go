package lab

import (
	"encoding/json"
	"strings"

	"github.com/medlab/medlab/internal/platform/apperr"
)

// Lab is the aggregate root: one stored document per laboratory with its
// reports embedded. Sub-entity mutations rewrite the whole document.
type Lab struct {
	LabID        string   `json:"labId"`
	LabEmail     string   `json:"labEmail"`
	PasswordHash string   `json:"passwordHash,omitempty"`
	LabName      string   `json:"labName"`
	LabAddress   string   `json:"labAddress"`
	Reports      []Report `json:"reports"`
}

// Report is a patient diagnostic record embedded in its lab.
type Report struct {
	ReportID    string `json:"reportId"`
	PatientName string `json:"patientName"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	DateOfTest  string `json:"dateOfTest"`
	Tests       []Test `json:"tests"`
}

// Test is a name/value result line inside a report.
type Test struct {
	TestName  string `json:"testName"`
	TestValue string `json:"testValue"`
}

// Summary is the client-facing view of a lab. The password hash never
// leaves the service.
type Summary struct {
	LabID      string `json:"labId"`
	LabEmail   string `json:"labEmail"`
	LabName    string `json:"labName"`
	LabAddress string `json:"labAddress"`
}

func (l *Lab) ToSummary() Summary {
	return Summary{
		LabID:      l.LabID,
		LabEmail:   l.LabEmail,
		LabName:    l.LabName,
		LabAddress: l.LabAddress,
	}
}

// Validate checks the aggregate before any write is committed.
func (l *Lab) Validate() error {
	var fields []string
	if !validEmail(l.LabEmail) {
		fields = append(fields, "labEmail")
	}
	if l.LabName == "" {
		fields = append(fields, "labName")
	}
	for _, r := range l.Reports {
		if r.Age < 0 {
			fields = append(fields, "reports.age")
			break
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// Validate checks a report before it is written into its parent lab.
func (r *Report) Validate() error {
	var fields []string
	if r.PatientName == "" {
		fields = append(fields, "patientName")
	}
	if r.Age < 0 {
		fields = append(fields, "age")
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// Patch is a sparse partial-update document for a lab: a field is applied
// only when non-empty, so patching is idempotent and an empty field can
// never erase stored state. The password field carries plaintext in transit
// and is rehashed on apply.
type Patch struct {
	LabName    string `json:"labName"`
	LabEmail   string `json:"labEmail"`
	LabAddress string `json:"labAddress"`
	Password   string `json:"passwordHash"`
}

// Apply copies each present field onto the lab. hash is invoked only for a
// non-empty password, so a patch can never clear a stored credential.
func (p Patch) Apply(l *Lab, hash func(string) (string, error)) error {
	if p.LabName != "" {
		l.LabName = p.LabName
	}
	if p.LabEmail != "" {
		l.LabEmail = p.LabEmail
	}
	if p.LabAddress != "" {
		l.LabAddress = p.LabAddress
	}
	if p.Password != "" {
		digest, err := hash(p.Password)
		if err != nil {
			return apperr.Internal(err, "hash password")
		}
		l.PasswordHash = digest
	}
	return nil
}

// ReportPatch is a sparse update for a report's patient fields. Age tracks
// presence: an absent field keeps the prior value, an explicit JSON null
// resets it to zero.
type ReportPatch struct {
	PatientName string `json:"patientName"`
	Gender      string `json:"gender"`
	DateOfTest  string `json:"dateOfTest"`
	Age         *int   `json:"age"`

	ageSet bool
}

func (p *ReportPatch) UnmarshalJSON(data []byte) error {
	type plain ReportPatch
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = ReportPatch(decoded)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	_, p.ageSet = raw["age"]
	return nil
}

// Apply copies present fields onto the report, validating age before any
// field of the target is touched.
func (p ReportPatch) Apply(r *Report) error {
	if p.ageSet && p.Age != nil && *p.Age < 0 {
		return apperr.Validation([]string{"age"})
	}

	if p.PatientName != "" {
		r.PatientName = p.PatientName
	}
	if p.Gender != "" {
		r.Gender = p.Gender
	}
	if p.DateOfTest != "" {
		r.DateOfTest = p.DateOfTest
	}
	if p.ageSet {
		if p.Age == nil {
			r.Age = 0
		} else {
			r.Age = *p.Age
		}
	}
	return nil
}
