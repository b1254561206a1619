package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grade-portal/grade-portal/internal/application/command"
	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
	"github.com/grade-portal/grade-portal/internal/infrastructure/service"
	"github.com/grade-portal/grade-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// response is the JSON envelope every API endpoint uses.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, response{Success: true, Data: data})
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case shared.IsValidation(err):
		status = http.StatusBadRequest
	case shared.IsNotFound(err):
		status = http.StatusNotFound
	case shared.IsConflict(err) || shared.IsReferential(err):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", logger.Err(err))
		writeJSON(w, status, response{Success: false, Error: "internal error"})
		return
	}

	writeJSON(w, status, response{Success: false, Error: err.Error()})
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.WrapError("http", "idParam", shared.ErrInvalidInput, "invalid id", err)
	}
	return id, nil
}

func decodeBody(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return shared.WrapError("http", "decode", shared.ErrInvalidInput, "malformed request body", err)
	}
	return nil
}

// parseDate parses an optional YYYY-MM-DD field; empty means zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(record.DateLayout, s)
	if err != nil {
		return time.Time{}, shared.WrapError("http", "parseDate", shared.ErrInvalidInput, "invalid date, expected YYYY-MM-DD", err)
	}
	return t, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pinger != nil {
		if err := s.deps.Pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, response{Success: false, Error: "store unreachable"})
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	session, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		Username:  session.Identity.Username,
		Role:      session.Identity.Role.String(),
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Auth.Logout(r.Context(), bearerToken(r))
	writeData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && token[:7] == "Bearer " {
		return token[7:]
	}
	return token
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

type studentRequest struct {
	Name             string `json:"name"`
	RollNumber       string `json:"roll_number"`
	Class            string `json:"class"`
	RegistrationDate string `json:"registration_date,omitempty"`
}

type studentResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	RollNumber       string `json:"roll_number"`
	Class            string `json:"class"`
	RegistrationDate string `json:"registration_date"`
}

func toStudentResponse(s *record.Student) studentResponse {
	return studentResponse{
		ID:               s.ID,
		Name:             s.Name,
		RollNumber:       s.RollNumber,
		Class:            s.Class,
		RegistrationDate: s.RegistrationDate.Format(record.DateLayout),
	}
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.deps.Students.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]studentResponse, 0, len(students))
	for _, st := range students {
		out = append(out, toStudentResponse(st))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	regDate, err := parseDate(req.RegistrationDate)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.deps.RegisterStudent.Handle(r.Context(), command.RegisterStudentCommand{
		Name:             req.Name,
		RollNumber:       req.RollNumber,
		Class:            req.Class,
		RegistrationDate: regDate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("student registered",
		logger.StudentID(result.Student.ID), logger.RollNumber(result.Student.RollNumber))
	writeData(w, http.StatusCreated, toStudentResponse(result.Student))
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	student, err := s.deps.Students.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toStudentResponse(student))
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req studentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	student, err := s.deps.UpdateStudent.Handle(r.Context(), command.UpdateStudentCommand{
		ID:         id,
		Name:       req.Name,
		RollNumber: req.RollNumber,
		Class:      req.Class,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toStudentResponse(student))
}

func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.deps.RemoveStudent.Handle(r.Context(), command.RemoveStudentCommand{ID: id}); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("student removed", logger.StudentID(id))
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECTS
// ══════════════════════════════════════════════════════════════════════════════

type subjectRequest struct {
	Name     string `json:"name"`
	MaxMarks int    `json:"max_marks,omitempty"`
}

type subjectResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	MaxMarks int    `json:"max_marks"`
}

func toSubjectResponse(sub *record.Subject) subjectResponse {
	return subjectResponse{ID: sub.ID, Name: sub.Name, MaxMarks: sub.MaxMarks}
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.deps.Subjects.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]subjectResponse, 0, len(subjects))
	for _, sub := range subjects {
		out = append(out, toSubjectResponse(sub))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	subject, err := s.deps.AddSubject.Handle(r.Context(), command.AddSubjectCommand{
		Name:     req.Name,
		MaxMarks: req.MaxMarks,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("subject added", logger.SubjectID(subject.ID))
	writeData(w, http.StatusCreated, toSubjectResponse(subject))
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	subject, err := s.deps.Subjects.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toSubjectResponse(subject))
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req subjectRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	subject, err := s.deps.UpdateSubject.Handle(r.Context(), command.UpdateSubjectCommand{
		ID:       id,
		Name:     req.Name,
		MaxMarks: req.MaxMarks,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toSubjectResponse(subject))
}

func (s *Server) handleRemoveSubject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.deps.RemoveSubject.Handle(r.Context(), command.RemoveSubjectCommand{ID: id}); err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// MARKS
// ══════════════════════════════════════════════════════════════════════════════

type recordMarkRequest struct {
	StudentID     int64   `json:"student_id"`
	SubjectID     int64   `json:"subject_id"`
	MarksObtained float64 `json:"marks_obtained"`
	EntryDate     string  `json:"entry_date,omitempty"`
}

type amendMarkRequest struct {
	MarksObtained float64 `json:"marks_obtained"`
}

type markResponse struct {
	ID            int64   `json:"id"`
	StudentID     int64   `json:"student_id"`
	SubjectID     int64   `json:"subject_id"`
	StudentName   string  `json:"student_name"`
	RollNumber    string  `json:"roll_number"`
	SubjectName   string  `json:"subject_name"`
	MarksObtained float64 `json:"marks_obtained"`
	Grade         string  `json:"grade"`
	EntryDate     string  `json:"entry_date"`
}

func toMarkResponse(m *record.Mark) markResponse {
	return markResponse{
		ID:            m.ID,
		StudentID:     m.StudentID,
		SubjectID:     m.SubjectID,
		StudentName:   m.StudentName,
		RollNumber:    m.RollNumber,
		SubjectName:   m.SubjectName,
		MarksObtained: m.MarksObtained,
		Grade:         string(m.Grade),
		EntryDate:     m.EntryDate.Format(record.DateLayout),
	}
}

func toMarkResponses(marks []*record.Mark) []markResponse {
	out := make([]markResponse, 0, len(marks))
	for _, m := range marks {
		out = append(out, toMarkResponse(m))
	}
	return out
}

func (s *Server) handleListMarks(w http.ResponseWriter, r *http.Request) {
	marks, err := s.deps.Marks.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toMarkResponses(marks))
}

func (s *Server) handleListStudentMarks(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.deps.Students.GetByID(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	marks, err := s.deps.Marks.ListByStudent(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toMarkResponses(marks))
}

func (s *Server) handleRecordMark(w http.ResponseWriter, r *http.Request) {
	var req recordMarkRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		s.writeError(w, err)
		return
	}

	mark, err := s.deps.RecordMark.Handle(r.Context(), command.RecordMarkCommand{
		StudentID:     req.StudentID,
		SubjectID:     req.SubjectID,
		MarksObtained: req.MarksObtained,
		EntryDate:     entryDate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("mark recorded",
		logger.MarkID(mark.ID), logger.StudentID(mark.StudentID), logger.SubjectID(mark.SubjectID),
		logger.Marks(mark.MarksObtained), logger.Grade(string(mark.Grade)))
	writeData(w, http.StatusCreated, toMarkResponse(mark))
}

func (s *Server) handleGetMark(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	mark, err := s.deps.Marks.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, toMarkResponse(mark))
}

func (s *Server) handleAmendMark(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req amendMarkRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	mark, err := s.deps.AmendMark.Handle(r.Context(), command.AmendMarkCommand{
		ID:            id,
		MarksObtained: req.MarksObtained,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("mark amended",
		logger.MarkID(mark.ID), logger.Marks(mark.MarksObtained), logger.Grade(string(mark.Grade)))
	writeData(w, http.StatusOK, toMarkResponse(mark))
}

func (s *Server) handleRemoveMark(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.deps.RemoveMark.Handle(r.Context(), command.RemoveMarkCommand{ID: id}); err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES & REPORTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Aggregates.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleTopPerformers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, shared.WrapError("http", "TopPerformers", shared.ErrInvalidInput, "invalid limit", err))
			return
		}
		limit = n
	}

	performers, err := s.deps.Aggregates.TopPerformers(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, performers)
}

func (s *Server) handleGradeDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := s.deps.Aggregates.GradeDistribution(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, distribution)
}

func (s *Server) handleStudentAverage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	avg, err := s.deps.Aggregates.StudentAverage(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]float64{"average_marks": avg})
}

func (s *Server) handleClassAverage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	avg, err := s.deps.Aggregates.ClassAverage(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]float64{"average_marks": avg})
}

func (s *Server) handleStudentReport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rep, err := s.deps.Reports.BuildStudentReport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rep.Text))
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	// Rendered to a buffer so store failures surface as an error response
	// instead of a truncated download.
	var buf bytes.Buffer
	if err := s.deps.Exporter.ExportAll(r.Context(), &buf); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="marks.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportStudent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.deps.Students.GetByID(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.deps.Exporter.ExportStudent(r.Context(), &buf, id); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="student_marks.csv"`)
	_, _ = w.Write(buf.Bytes())
}
