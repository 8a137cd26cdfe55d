package models

import "time"

// ProgramType enumerates offered degree kinds.
type ProgramType string

const (
	ProgramBTech   ProgramType = "BTech"
	ProgramMTech   ProgramType = "MTech"
	ProgramPhD     ProgramType = "PhD"
	ProgramDiploma ProgramType = "Diploma"
)

// ValidProgramType reports whether the value is a known program type.
func ValidProgramType(t ProgramType) bool {
	switch t {
	case ProgramBTech, ProgramMTech, ProgramPhD, ProgramDiploma:
		return true
	}
	return false
}

// ProgramStatus marks a program as open or closed for applications.
type ProgramStatus string

const (
	ProgramActive   ProgramStatus = "Active"
	ProgramInactive ProgramStatus = "Inactive"
)

// Program is an offered course of study with seats, fees, and deadlines.
type Program struct {
	ID                  string        `db:"id" json:"id"`
	Name                string        `db:"name" json:"name"`
	Description         string        `db:"description" json:"description"`
	ProgramType         ProgramType   `db:"program_type" json:"program_type"`
	Department          string        `db:"department" json:"department"`
	DurationYears       int           `db:"duration_years" json:"duration_years"`
	Seats               int           `db:"seats" json:"seats"`
	ApplicationFee      float64       `db:"application_fee" json:"application_fee"`
	TuitionFee          float64       `db:"tuition_fee" json:"tuition_fee"`
	Eligibility         string        `db:"eligibility" json:"eligibility"`
	ApplicationDeadline time.Time     `db:"application_deadline" json:"application_deadline"`
	StartDate           time.Time     `db:"start_date" json:"start_date"`
	Status              ProgramStatus `db:"status" json:"status"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
}

// ProgramFilter provides filters for listing programs.
type ProgramFilter struct {
	Status     ProgramStatus
	Department string
	Type       ProgramType
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
