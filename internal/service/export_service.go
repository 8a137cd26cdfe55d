package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/models"
	appErrors "github.com/noah-isme/uni-adm-api/pkg/errors"
	"github.com/noah-isme/uni-adm-api/pkg/export"
	"github.com/noah-isme/uni-adm-api/pkg/storage"
)

type exportApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
}

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult describes a generated file and its signed download URL.
type ExportResult struct {
	ExportID  string    `json:"export_id"`
	Format    string    `json:"format"`
	RowCount  int       `json:"row_count"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders the admissions ledger to CSV or PDF and hands
// out time-limited signed download tokens.
type ExportService struct {
	repo    exportApplicationRepository
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	enabled bool
	logger  *zap.Logger
}

// NewExportService creates an instance of ExportService.
func NewExportService(repo exportApplicationRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		storage: store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		enabled: enabled,
		logger:  logger,
	}
}

// Generate renders the admissions ledger for the given filter. Staff and
// admin only.
func (s *ExportService) Generate(ctx context.Context, claims *models.JWTClaims, filter models.ApplicationFilter, format ExportFormat) (*ExportResult, error) {
	if err := requireReviewer(claims); err != nil {
		return nil, err
	}
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not a supported export format", format))
	}

	// The ledger is a full snapshot for the filter, not a page.
	filter.Page = 1
	filter.PageSize = 10000

	applications, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}

	data := buildLedger(applications)

	var rendered []byte
	switch format {
	case ExportCSV:
		rendered, err = s.csv.Render(data)
	case ExportPDF:
		rendered, err = s.pdf.Render(data, "Admissions Ledger")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	relPath := fmt.Sprintf("%s.%s", exportID, format)
	if _, err := s.storage.Save(relPath, rendered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download URL")
	}

	s.logger.Info("export generated",
		zap.String("export_id", exportID),
		zap.String("format", string(format)),
		zap.Int("rows", len(applications)),
	)

	return &ExportResult{
		ExportID:  exportID,
		Format:    string(format),
		RowCount:  len(applications),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Download resolves a signed token to the stored file. The token is the
// only credential; expired or tampered tokens are rejected.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	if !s.enabled {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, relPath, nil
}

func buildLedger(applications []models.ApplicationDetail) export.Dataset {
	data := export.Dataset{
		Headers: []string{
			"Application Number", "Student", "Email", "Program", "Department",
			"Status", "Payment", "Submitted", "Decided",
		},
	}
	for _, a := range applications {
		data.Rows = append(data.Rows, map[string]string{
			"Application Number": a.ApplicationNumber,
			"Student":            a.StudentName,
			"Email":              a.StudentEmail,
			"Program":            a.ProgramName,
			"Department":         a.Department,
			"Status":             string(a.Status),
			"Payment":            string(a.PaymentStatus),
			"Submitted":          formatDate(a.SubmissionDate),
			"Decided":            formatDate(a.DecisionDate),
		})
	}
	return data
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
