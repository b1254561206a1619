// Package report renders per-student academic reports and tabular exports
// from recorded marks.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPORT
// ══════════════════════════════════════════════════════════════════════════════

const reportWidth = 60

// StudentReport is a rendered academic report for one student.
type StudentReport struct {
	// Student is the report subject.
	Student *record.Student

	// Marks are the student's marks ordered by subject name.
	Marks []*record.Mark

	// AverageMarks is the mean of the listed marks, zero when none.
	AverageMarks float64

	// OverallGrade classifies the average.
	OverallGrade grading.Grade

	// Text is the rendered plain-text report.
	Text string
}

// Builder assembles student reports from the record store.
type Builder struct {
	studentRepo record.StudentRepository
	markRepo    record.MarkRepository
}

// NewBuilder creates a new report Builder.
func NewBuilder(studentRepo record.StudentRepository, markRepo record.MarkRepository) *Builder {
	return &Builder{studentRepo: studentRepo, markRepo: markRepo}
}

// BuildStudentReport assembles the report for one student. The student must
// exist; a student without marks gets a report saying so.
func (b *Builder) BuildStudentReport(ctx context.Context, studentID int64) (*StudentReport, error) {
	student, err := b.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	marks, err := b.markRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	report := &StudentReport{
		Student: student,
		Marks:   marks,
	}

	if len(marks) > 0 {
		var total float64
		for _, m := range marks {
			total += m.MarksObtained
		}
		report.AverageMarks = total / float64(len(marks))
		report.OverallGrade = grading.Classify(report.AverageMarks)
	}

	report.Text = renderReport(report)
	return report, nil
}

// renderReport lays out the plain-text report.
func renderReport(r *StudentReport) string {
	var sb strings.Builder
	rule := strings.Repeat("═", reportWidth)

	sb.WriteString(rule + "\n")
	sb.WriteString(center("STUDENT ACADEMIC REPORT", reportWidth) + "\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Name:        %s\n", r.Student.Name)
	fmt.Fprintf(&sb, "Roll Number: %s\n", r.Student.RollNumber)
	fmt.Fprintf(&sb, "Class:       %s\n", r.Student.Class)
	fmt.Fprintf(&sb, "Registered:  %s\n", r.Student.RegistrationDate.Format(record.DateLayout))
	sb.WriteString(rule + "\n")

	if len(r.Marks) == 0 {
		sb.WriteString("No marks recorded for this student.\n")
		sb.WriteString(rule + "\n")
		fmt.Fprintf(&sb, "Report Generated: %s\n", time.Now().Format(record.DateLayout))
		return sb.String()
	}

	fmt.Fprintf(&sb, "%-20s | %8s | %-5s | %-12s\n", "Subject", "Marks", "Grade", "Entry Date")
	sb.WriteString(strings.Repeat("─", reportWidth) + "\n")
	for _, m := range r.Marks {
		fmt.Fprintf(&sb, "%-20s | %8.1f | %-5s | %-12s\n",
			m.SubjectName,
			m.MarksObtained,
			m.Grade,
			m.EntryDate.Format(record.DateLayout),
		)
	}
	sb.WriteString(strings.Repeat("─", reportWidth) + "\n")

	fmt.Fprintf(&sb, "Average Marks: %.2f%%\n", r.AverageMarks)
	fmt.Fprintf(&sb, "Overall Grade: %s - %s\n", r.OverallGrade, r.OverallGrade.Description())
	fmt.Fprintf(&sb, "Subjects Completed: %d\n", len(r.Marks))
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Report Generated: %s\n", time.Now().Format(record.DateLayout))

	return sb.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
