package export

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type fileStore interface {
	Save(filename string, data []byte) (string, error)
}

type tokenSigner interface {
	Generate(runID, relPath string) (string, time.Time, error)
}

// Artifact records one rendered timetable file. Token and ExpiresAt are set
// only when the writer has a signer; the serving collaborator validates the
// token with the shared secret.
type Artifact struct {
	Path      string
	Format    string
	Token     string
	ExpiresAt time.Time
}

// Writer renders a run's timetable grids and faculty schedules in the
// configured formats and persists them through the file store.
type Writer struct {
	store   fileStore
	signer  tokenSigner
	formats []string
	csv     *CSVExporter
	pdf     *PDFExporter
	logger  *zap.Logger
}

// NewWriter constructs a Writer. A nil signer disables download tokens;
// empty formats default to csv and pdf.
func NewWriter(store fileStore, signer tokenSigner, formats []string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(formats) == 0 {
		formats = []string{FormatCSV, FormatPDF}
	}
	return &Writer{
		store:   store,
		signer:  signer,
		formats: formats,
		csv:     NewCSVExporter(),
		pdf:     NewPDFExporter(),
		logger:  logger,
	}
}

// WriteRun renders one artifact set per student group with placed entries
// plus one per faculty schedule carried by the result.
func (w *Writer) WriteRun(snap *models.Snapshot, result *models.RunResult) ([]Artifact, error) {
	if snap == nil || result == nil {
		return nil, fmt.Errorf("snapshot and result required")
	}

	courseCodes := make(map[string]string, len(snap.Courses))
	for _, course := range snap.Courses {
		courseCodes[course.ID] = course.Code
	}

	byGroup := make(map[string][]models.TimetableEntry, len(snap.Groups))
	for _, entry := range result.Entries {
		byGroup[entry.GroupID] = append(byGroup[entry.GroupID], entry)
	}

	var artifacts []Artifact
	for _, group := range snap.Groups {
		entries := byGroup[group.ID]
		if len(entries) == 0 {
			continue
		}
		grid := GroupGrid(group, snap.TimeSlots, entries, courseCodes)
		title := fmt.Sprintf("Timetable %s", group.Name)
		written, err := w.writeGrid(grid, title, "timetable_"+group.Name, result.RunID)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, written...)
	}

	for _, schedule := range result.FacultySchedules {
		if len(schedule.Cells) == 0 {
			continue
		}
		grid := FacultyGrid(schedule, snap.TimeSlots)
		name := schedule.Name
		if name == "" {
			name = schedule.FacultyID
		}
		title := fmt.Sprintf("Faculty Schedule %s", name)
		written, err := w.writeGrid(grid, title, "faculty_"+name, result.RunID)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, written...)
	}

	w.logger.Info("run artifacts written",
		zap.String("run_id", result.RunID),
		zap.Int("artifacts", len(artifacts)),
	)
	return artifacts, nil
}

func (w *Writer) writeGrid(grid Dataset, title, baseName, runID string) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(w.formats))
	for _, format := range w.formats {
		var payload []byte
		var err error
		switch format {
		case FormatCSV:
			payload, err = w.csv.Render(grid)
		case FormatPDF:
			payload, err = w.pdf.Render(grid, title)
		default:
			err = fmt.Errorf("unsupported export format %s", format)
		}
		if err != nil {
			return nil, err
		}

		filename := fmt.Sprintf("%s_%s.%s", sanitizeFilename(baseName), runID, format)
		relPath, err := w.store.Save(filename, payload)
		if err != nil {
			return nil, fmt.Errorf("save artifact %s: %w", filename, err)
		}

		artifact := Artifact{Path: relPath, Format: format}
		if w.signer != nil {
			token, expiresAt, err := w.signer.Generate(runID, relPath)
			if err != nil {
				return nil, fmt.Errorf("sign artifact %s: %w", filename, err)
			}
			artifact.Token = token
			artifact.ExpiresAt = expiresAt
		}
		artifacts = append(artifacts, artifact)

		w.logger.Debug("artifact rendered",
			zap.String("path", relPath),
			zap.String("format", format),
		)
	}
	return artifacts, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(strings.ToLower(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
