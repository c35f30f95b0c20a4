package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"
	"receiptpanel/internal/storage"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Receipts"
	archiveLinkExpiry = 24 * time.Hour

	// XLSXContentType is the media type of exported workbooks.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"Receipt ID", "Printed At", "Date", "Receipt No", "Company", "Amount", "VAT Rate", "VAT Amount",
	"Description", "Cashier", "Template", "License Key", "License Owner", "PC Name", "Hardware ID", "OS",
}

// ErrArchiveUnavailable is returned when no object store is configured.
var ErrArchiveUnavailable = errors.New("export archive storage is not configured")

// ExportArchive points at an uploaded workbook.
type ExportArchive struct {
	Object    string    `json:"object"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ExportService interface {
	Rows(ctx context.Context, filter models.ReceiptFilter) ([]*models.ReceiptExportRow, error)
	Workbook(ctx context.Context, filter models.ReceiptFilter) ([]byte, int, error)
	Archive(ctx context.Context, filter models.ReceiptFilter) (*ExportArchive, error)
}

type exportService struct {
	receipts repositories.ReceiptRepository
	store    storage.ObjectStore
	bucket   string
	logger   *slog.Logger
	now      func() time.Time
}

// NewExportService builds the export service. store may be nil, in which
// case Archive fails with ErrArchiveUnavailable.
func NewExportService(receipts repositories.ReceiptRepository, store storage.ObjectStore, bucket string, logger *slog.Logger) ExportService {
	return &exportService{
		receipts: receipts,
		store:    store,
		bucket:   bucket,
		logger:   logger.With("component", "export"),
		now:      time.Now,
	}
}

func (s *exportService) Rows(ctx context.Context, filter models.ReceiptFilter) ([]*models.ReceiptExportRow, error) {
	start, end, err := NormalizeDateRange(filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}
	filter.StartDate, filter.EndDate = start, end

	rows, err := s.receipts.Export(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		fillExportDefaults(r)
	}
	return rows, nil
}

// fillExportDefaults applies the placeholders the desktop reports expect
// for blank columns.
func fillExportDefaults(r *models.ReceiptExportRow) {
	if r.Description == "" {
		r.Description = "-"
	}
	if r.Cashier == "" {
		r.Cashier = "-"
	}
	if r.Template == "" {
		r.Template = "Standart"
	}
}

func (s *exportService) Workbook(ctx context.Context, filter models.ReceiptFilter) ([]byte, int, error) {
	rows, err := s.Rows(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	data, err := buildWorkbook(rows)
	if err != nil {
		return nil, 0, err
	}
	return data, len(rows), nil
}

func buildWorkbook(rows []*models.ReceiptExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	lastColumn, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", lastColumn, 18); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	for i, r := range rows {
		values := []any{
			r.ReceiptID.String(), r.PrintedAt.Format(time.DateTime), r.DatePrinted.Format(dateLayout), r.ReceiptNo,
			r.CompanyName, r.Amount, r.VatRate, r.VatAmount, r.Description, r.Cashier, r.Template,
			r.LicenseKey, r.LicenseOwner, r.PCName, r.HardwareID, r.OSInfo,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive uploads the workbook to the export bucket and returns a
// time-limited download link.
func (s *exportService) Archive(ctx context.Context, filter models.ReceiptFilter) (*ExportArchive, error) {
	if s.store == nil {
		return nil, ErrArchiveUnavailable
	}

	data, count, err := s.Workbook(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	object := fmt.Sprintf("exports/%s/receipts-%s.xlsx", now.Format(dateLayout), now.Format("150405.000000000"))
	if err := s.store.Upload(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), XLSXContentType); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.store.PresignedURL(ctx, s.bucket, object, archiveLinkExpiry)
	if err != nil {
		if derr := s.store.Delete(ctx, s.bucket, object); derr != nil {
			s.logger.Warn("orphaned export left in bucket", slog.String("object", object), slog.Any("error", derr))
		}
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logger.Info("export archived", slog.String("object", object), slog.Int("rows", count))

	return &ExportArchive{
		Object:    object,
		URL:       url,
		Rows:      count,
		ExpiresAt: now.Add(archiveLinkExpiry),
	}, nil
}
