package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/roster"
	"github.com/SaramshGautam/collaBoard/internal/store"
)

func (s *Server) handleAddClassroom(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := s.parseMultipart(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	className := strings.TrimSpace(r.PostFormValue("class_name"))
	courseID := strings.TrimSpace(r.PostFormValue("course_id"))
	semester := strings.TrimSpace(r.PostFormValue("semester"))
	if className == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_fields", "Classroom name is required.")
		return
	}
	classID := courseID
	if classID == "" {
		classID = className
	}

	rows, ok := s.rosterUpload(w, r, "student_file", roster.StudentColumns, true)
	if !ok {
		return
	}

	classroom := model.Classroom{
		ID:           classID,
		Name:         className,
		TeacherEmail: claims.Email,
		Semester:     semester,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateClassroom(r.Context(), classroom); err != nil {
		if errors.Is(err, store.ErrExists) {
			writeErrorMessage(w, http.StatusBadRequest, "classroom_exists", "Classroom already exists!")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := s.importRoster(r, classID, rows); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Classroom added successfully.",
		"classID": classID,
	})
}

func (s *Server) handleEditClassroom(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	if err := s.parseMultipart(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	update := store.ClassroomUpdate{}
	if name := strings.TrimSpace(r.PostFormValue("class_name")); name != "" {
		update.Name = &name
	}
	if semester := strings.TrimSpace(r.PostFormValue("semester")); semester != "" {
		update.Semester = &semester
	}

	rows, ok := s.rosterUpload(w, r, "student_file", roster.StudentColumns, false)
	if !ok {
		return
	}

	if update.Name != nil || update.Semester != nil {
		if err := s.store.UpdateClassroom(r.Context(), classID, update); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}
	if rows != nil {
		if err := s.importRoster(r, classID, rows); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Classroom updated successfully."})
}

type classroomResponse struct {
	Classroom model.Classroom `json:"classroom"`
	Projects  []model.Project `json:"projects"`
	Role      string          `json:"role"`
}

func (s *Server) handleGetClassroom(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	classID := chi.URLParam(r, "classID")

	classroom, err := s.store.GetClassroom(r.Context(), classID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "classroom_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	role := ""
	switch {
	case claims.Email == classroom.TeacherEmail:
		role = model.RoleTeacher
	default:
		if _, err := s.store.GetStudent(r.Context(), classID, claims.Email); err == nil {
			role = model.RoleStudent
		} else if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}
	if role == "" {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	projects, err := s.store.ListProjects(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, classroomResponse{Classroom: classroom, Projects: projects, Role: role})
}

func (s *Server) handleListClassrooms(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var classrooms []model.Classroom
	var err error
	if claims.Role == model.RoleTeacher {
		classrooms, err = s.store.ListClassroomsByTeacher(r.Context(), claims.Email)
	} else {
		classrooms, err = s.store.ListClassroomsByStudent(r.Context(), claims.Email)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if classrooms == nil {
		classrooms = []model.Classroom{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"classrooms": classrooms})
}

// rosterUpload parses an optional file field. When required is true a missing
// file is a 400. A nil row slice with ok=true means no file was attached.
// Validation failures are written to w before any document is touched.
func (s *Server) rosterUpload(w http.ResponseWriter, r *http.Request, field string, required []string, mustExist bool) ([]roster.Row, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !mustExist {
			return nil, true
		}
		writeErrorMessage(w, http.StatusBadRequest, "missing_file", "No file uploaded.")
		return nil, false
	}
	defer file.Close()

	if !roster.AllowedFile(header.Filename) {
		writeErrorMessage(w, http.StatusBadRequest, "unsupported_file", "Invalid file format. Please upload a CSV or Excel file.")
		return nil, false
	}

	rows, err := roster.Parse(file, header.Filename, required)
	if err != nil {
		var missing *roster.MissingColumnsError
		if errors.As(err, &missing) {
			writeErrorMessage(w, http.StatusBadRequest, "missing_columns", missing.Error())
			return nil, false
		}
		writeErrorMessage(w, http.StatusBadRequest, "invalid_file", "Could not read the uploaded file.")
		return nil, false
	}
	return rows, true
}

// importRoster upserts one student document per row and lazily creates the
// matching user. Re-importing the same file is a no-op for existing rows.
func (s *Server) importRoster(r *http.Request, classID string, rows []roster.Row) error {
	now := time.Now().UTC()
	for _, row := range rows {
		if row.Email == "" {
			continue
		}
		student := model.Student{
			ClassID:    classID,
			Email:      row.Email,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			LSUID:      row.LSUID,
			AssignedAt: now,
		}
		if err := s.store.UpsertStudent(r.Context(), student); err != nil {
			return err
		}
		user := model.User{
			Email:     row.Email,
			Role:      model.RoleStudent,
			Name:      student.DisplayName(),
			LSUID:     row.LSUID,
			CreatedAt: now,
		}
		if err := s.store.CreateUserIfAbsent(r.Context(), user); err != nil {
			return err
		}
	}
	return nil
}
