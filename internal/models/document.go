package models

import "time"

// DocumentType enumerates the accepted academic and identity documents.
type DocumentType string

const (
	DocPhoto                    DocumentType = "Photo"
	DocIDProof                  DocumentType = "ID Proof"
	DocAddressProof             DocumentType = "Address Proof"
	DocBirthCertificate         DocumentType = "Birth Certificate"
	DocHighSchoolCertificate    DocumentType = "High School Certificate"
	DocHighSchoolTranscripts    DocumentType = "High School Transcripts"
	DocUndergradCertificate     DocumentType = "Undergraduate Certificate"
	DocUndergradTranscripts     DocumentType = "Undergraduate Transcripts"
	DocPostgraduateCertificate  DocumentType = "Postgraduate Certificate"
	DocPostgraduateTranscripts  DocumentType = "Postgraduate Transcripts"
	DocEntranceExamScore        DocumentType = "Entrance Exam Score"
	DocRecommendationLetter     DocumentType = "Recommendation Letter"
	DocStatementOfPurpose       DocumentType = "Statement of Purpose"
	DocOther                    DocumentType = "Other"
)

var documentTypes = map[DocumentType]struct{}{
	DocPhoto: {}, DocIDProof: {}, DocAddressProof: {}, DocBirthCertificate: {},
	DocHighSchoolCertificate: {}, DocHighSchoolTranscripts: {},
	DocUndergradCertificate: {}, DocUndergradTranscripts: {},
	DocPostgraduateCertificate: {}, DocPostgraduateTranscripts: {},
	DocEntranceExamScore: {}, DocRecommendationLetter: {},
	DocStatementOfPurpose: {}, DocOther: {},
}

// ValidDocumentType reports whether the value is a known document type.
func ValidDocumentType(t DocumentType) bool {
	_, ok := documentTypes[t]
	return ok
}

// DocumentStatus is the verification outcome of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "Pending"
	DocumentApproved DocumentStatus = "Approved"
	DocumentRejected DocumentStatus = "Rejected"
)

// ValidDocumentStatus reports whether the value is a known verification status.
func ValidDocumentStatus(s DocumentStatus) bool {
	return s == DocumentPending || s == DocumentApproved || s == DocumentRejected
}

// Document is the metadata record for one uploaded supporting file.
// Invariant: Verified is true exactly when Status is Approved.
type Document struct {
	ID               string         `db:"id" json:"id"`
	StudentID        string         `db:"student_id" json:"student_id"`
	ApplicationID    *string        `db:"application_id" json:"application_id,omitempty"`
	DocumentType     DocumentType   `db:"document_type" json:"document_type"`
	DocumentName     string         `db:"document_name" json:"document_name"`
	FilePath         string         `db:"file_path" json:"file_path"`
	UploadDate       time.Time      `db:"upload_date" json:"upload_date"`
	Verified         bool           `db:"verified" json:"verified"`
	VerifiedBy       *string        `db:"verified_by" json:"verified_by,omitempty"`
	VerificationDate *time.Time     `db:"verification_date" json:"verification_date,omitempty"`
	Status           DocumentStatus `db:"status" json:"status"`
	Remarks          *string        `db:"remarks" json:"remarks,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
