package models

import "time"

// PersonalInfo is the identity sub-document of a student profile.
type PersonalInfo struct {
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
	Gender      string    `json:"gender" validate:"required"`
	Nationality string    `json:"nationality"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	Country     string    `json:"country"`
	PhoneNumber string    `json:"phone_number" validate:"required"`
}

// EducationalBackground is the academic history sub-document.
type EducationalBackground struct {
	HighSchoolName           string  `json:"high_school_name"`
	HighSchoolGrade          float64 `json:"high_school_grade"`
	HighSchoolGraduationYear int     `json:"high_school_graduation_year"`
	PreviousInstitution      string  `json:"previous_institution,omitempty"`
	PreviousQualification    string  `json:"previous_qualification,omitempty"`
	PreviousGrade            float64 `json:"previous_grade,omitempty"`
	PreviousGraduationYear   int     `json:"previous_graduation_year,omitempty"`
}

// StudentProfile is the 1:1 extension of a student account. The nested
// sub-documents are stored as JSONB columns. Documents is derived from
// the documents table on reads, newest upload first.
type StudentProfile struct {
	ID             string                `db:"id" json:"id"`
	UserID         string                `db:"user_id" json:"user_id"`
	PersonalInfo   PersonalInfo          `db:"-" json:"personal_info"`
	Educational    EducationalBackground `db:"-" json:"educational_background"`
	Documents      []Document            `db:"-" json:"documents"`
	PersonalRaw    []byte                `db:"personal_info" json:"-"`
	EducationalRaw []byte                `db:"educational_background" json:"-"`
	CreatedAt      time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time             `db:"updated_at" json:"updated_at"`
}
