package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/grade-portal/grade-portal/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// CSV EXPORT
// ══════════════════════════════════════════════════════════════════════════════

// csvHeader is the fixed column set of every export.
var csvHeader = []string{"Student Name", "Roll Number", "Subject", "Marks", "Grade", "Entry Date"}

// Exporter writes recorded marks as CSV.
type Exporter struct {
	markRepo record.MarkRepository
}

// NewExporter creates a new Exporter.
func NewExporter(markRepo record.MarkRepository) *Exporter {
	return &Exporter{markRepo: markRepo}
}

// ExportAll writes every recorded mark, ordered by student then subject.
func (e *Exporter) ExportAll(ctx context.Context, w io.Writer) error {
	marks, err := e.markRepo.List(ctx)
	if err != nil {
		return err
	}
	return writeCSV(w, marks)
}

// ExportStudent writes one student's marks ordered by subject.
func (e *Exporter) ExportStudent(ctx context.Context, w io.Writer, studentID int64) error {
	marks, err := e.markRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	return writeCSV(w, marks)
}

// Rows flattens marks into export rows, one per mark. Marks are formatted
// with one decimal place; dates use the portal date layout.
func Rows(marks []*record.Mark) [][]string {
	rows := make([][]string, 0, len(marks))
	for _, m := range marks {
		rows = append(rows, []string{
			m.StudentName,
			m.RollNumber,
			m.SubjectName,
			strconv.FormatFloat(m.MarksObtained, 'f', 1, 64),
			string(m.Grade),
			m.EntryDate.Format(record.DateLayout),
		})
	}
	return rows
}

// writeCSV emits the header and the flattened rows.
func writeCSV(w io.Writer, marks []*record.Mark) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	// WriteAll flushes and reports any deferred write error.
	return cw.WriteAll(Rows(marks))
}
