package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uni-scheduler/timetable-api/internal/engine"
	"github.com/uni-scheduler/timetable-api/internal/models"
	appErrors "github.com/uni-scheduler/timetable-api/pkg/errors"
	"github.com/uni-scheduler/timetable-api/pkg/export"
	"github.com/uni-scheduler/timetable-api/pkg/storage"
)

type timetableExportReader interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListEntryDetails(ctx context.Context, timetableID string) ([]models.TimetableEntryDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderGrids(title string, grids []export.Grid) ([]byte, error)
}

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	InstitutionName string
	ResultTTL       time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders committed timetables to downloadable files: one
// weekly grid per section for PDF, a flat table for CSV. Files land in local
// storage and are fetched back through signed tokens.
type ExportService struct {
	timetables timetableExportReader
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

func NewExportService(timetables timetableExportReader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.InstitutionName == "" {
		cfg.InstitutionName = "University Timetable"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetables: timetables,
		storage:    files,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate renders a timetable and stores the file, returning a signed
// download token.
func (s *ExportService) Generate(ctx context.Context, timetableID string, format ExportFormat) (*ExportResult, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	details, err := s.timetables.ListEntryDetails(ctx, timetableID)
	if err != nil {
		return nil, fmt.Errorf("load timetable entries: %w", err)
	}

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(buildEntryDataset(details))
	case ExportFormatPDF:
		title := fmt.Sprintf("%s - %s", s.cfg.InstitutionName, timetable.Name)
		payload, err = s.pdf.RenderGrids(title, buildSectionGrids(details))
	default:
		err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(timetable.Name), time.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(timetableID, relPath)
	if err != nil {
		return nil, fmt.Errorf("sign export token: %w", err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("timetable exported",
		zap.String("timetable_id", timetableID),
		zap.String("format", string(format)),
		zap.String("file", relPath))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (timetableID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when
// ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

var entryDatasetHeaders = []string{"Section", "Course Code", "Course", "Type", "Day", "Start", "End", "Instructor", "Room"}

func buildEntryDataset(details []models.TimetableEntryDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, map[string]string{
			"Section":     d.SectionCode,
			"Course Code": d.CourseCode,
			"Course":      d.CourseName,
			"Type":        string(d.CourseType),
			"Day":         orUnassigned(d.Day),
			"Start":       orUnassigned(d.StartTime),
			"End":         orUnassigned(d.EndTime),
			"Instructor":  orUnassigned(d.InstructorName),
			"Room":        orUnassigned(d.RoomNumber),
		})
	}
	return export.Dataset{Headers: entryDatasetHeaders, Rows: rows}
}

const lunchColumn = "13:00"

// buildSectionGrids groups entries per section into weekly grids. Columns are
// the start times actually used plus the lunch column; multi-hour sessions
// span the columns they occupy.
func buildSectionGrids(details []models.TimetableEntryDetail) []export.Grid {
	bySection := map[string][]models.TimetableEntryDetail{}
	var sectionCodes []string
	columnSet := map[string]bool{lunchColumn: true}
	for _, d := range details {
		if _, seen := bySection[d.SectionCode]; !seen {
			sectionCodes = append(sectionCodes, d.SectionCode)
		}
		bySection[d.SectionCode] = append(bySection[d.SectionCode], d)
		if d.StartTime != nil {
			columnSet[*d.StartTime] = true
			if start, err := engine.ParseClock(*d.StartTime); err == nil {
				for offset := 1; offset < d.Duration; offset++ {
					columnSet[engine.FormatClock(start+offset*60)] = true
				}
			}
		}
	}
	sort.Strings(sectionCodes)

	columns := make([]string, 0, len(columnSet))
	for col := range columnSet {
		columns = append(columns, col)
	}
	sort.Slice(columns, func(i, j int) bool {
		a, errA := engine.ParseClock(columns[i])
		b, errB := engine.ParseClock(columns[j])
		if errA != nil || errB != nil {
			return columns[i] < columns[j]
		}
		return a < b
	})

	grids := make([]export.Grid, 0, len(sectionCodes))
	for _, code := range sectionCodes {
		grid := export.Grid{
			Title:   fmt.Sprintf("Section %s", code),
			Days:    models.TeachingDays,
			Columns: columns,
			Lunch:   lunchColumn,
			Cells:   map[string]map[string]export.GridCell{},
		}
		for _, d := range bySection[code] {
			if d.Day == nil || d.StartTime == nil {
				continue
			}
			if grid.Cells[*d.Day] == nil {
				grid.Cells[*d.Day] = map[string]export.GridCell{}
			}
			lines := []string{d.CourseCode, orUnassigned(d.InstructorName)}
			if d.RoomNumber != nil {
				lines = append(lines, "Room "+*d.RoomNumber)
			}
			span := d.Duration
			if span < 1 {
				span = 1
			}
			grid.Cells[*d.Day][*d.StartTime] = export.GridCell{Lines: lines, Span: span}
		}
		grids = append(grids, grid)
	}
	return grids
}

func orUnassigned(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
