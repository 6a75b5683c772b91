package lab

import (
	"context"
	"time"

	"github.com/medlab/medlab/internal/platform/apperr"
	"github.com/medlab/medlab/internal/platform/auth"
)

// Seed inserts the demo labs used for local development. It is a no-op when
// any lab already exists, so running it twice is safe. Demo accounts log in
// with the password "demo-password".
func Seed(ctx context.Context, repo Repository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	digest, err := auth.HashPassword("demo-password")
	if err != nil {
		return 0, apperr.Internal(err, "hash demo password")
	}
	today := time.Now().Format("2006-01-02")

	labs := []*Lab{
		{
			LabID:        "1",
			LabEmail:     "central@medlab.example",
			PasswordHash: digest,
			LabName:      "Central Lab",
			LabAddress:   "123 Main Street",
			Reports: []Report{
				{
					ReportID:    "1",
					PatientName: "Jane Doe",
					Age:         45,
					Gender:      "Female",
					DateOfTest:  today,
					Tests: []Test{
						{TestName: "Blood Test", TestValue: "Normal"},
						{TestName: "X-Ray", TestValue: "Clear"},
					},
				},
			},
		},
		{
			LabID:        "2",
			LabEmail:     "northside@medlab.example",
			PasswordHash: digest,
			LabName:      "Northside Lab",
			LabAddress:   "456 Oak Avenue",
			Reports: []Report{
				{
					ReportID:    "1",
					PatientName: "John Smith",
					Age:         30,
					Gender:      "Male",
					DateOfTest:  today,
					Tests: []Test{
						{TestName: "Blood Test", TestValue: "Low Iron"},
						{TestName: "CT Scan", TestValue: "Abnormal"},
					},
				},
			},
		},
	}

	for _, l := range labs {
		if err := repo.Upsert(ctx, l); err != nil {
			return 0, err
		}
	}
	return len(labs), nil
}
