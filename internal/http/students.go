package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/store"
	"github.com/SaramshGautam/collaBoard/internal/teams"
)

func (s *Server) handleManageStudents(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}

	students, err := s.store.ListStudents(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"students": students})
}

type addStudentRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	LSUID     string `json:"lsuId"`
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}

	var req addStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.LSUID = strings.TrimSpace(req.LSUID)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_fields", "First name, last name and email are required.")
		return
	}

	now := time.Now().UTC()
	student := model.Student{
		ClassID:    classID,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		LSUID:      req.LSUID,
		AssignedAt: now,
	}
	if err := s.store.UpsertStudent(r.Context(), student); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	user := model.User{
		Email:     req.Email,
		Role:      model.RoleStudent,
		Name:      student.DisplayName(),
		LSUID:     req.LSUID,
		CreatedAt: now,
	}
	if err := s.store.CreateUserIfAbsent(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student added successfully."})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	email := strings.ToLower(chi.URLParam(r, "email"))

	student, err := s.store.GetStudent(r.Context(), classID, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

type editStudentRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *Server) handleEditStudent(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	email := strings.ToLower(chi.URLParam(r, "email"))

	var req editStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_fields", "First name and last name are required.")
		return
	}

	if err := s.store.UpdateStudentName(r.Context(), classID, email, req.FirstName, req.LastName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	displayName := req.LastName + ", " + req.FirstName
	if err := s.store.UpdateUserName(r.Context(), email, displayName); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.renameTeamMember(r, classID, email, displayName); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student updated successfully."})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	email := strings.ToLower(chi.URLParam(r, "email"))

	if err := s.store.DeleteStudent(r.Context(), classID, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "student_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.scrubTeamMember(r, classID, email); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student deleted successfully."})
}

// renameTeamMember refreshes the denormalized member name inside every team of
// every project the student appears in.
func (s *Server) renameTeamMember(r *http.Request, classID, email, displayName string) error {
	return s.forEachTeam(r, classID, func(team model.Team) error {
		member, ok := team.Members[email]
		if !ok {
			return nil
		}
		member.Name = displayName
		team.Members[email] = member
		return s.store.PutTeam(r.Context(), team)
	})
}

// scrubTeamMember removes the student from every team across the classroom's
// projects, deleting any team left empty.
func (s *Server) scrubTeamMember(r *http.Request, classID, email string) error {
	return s.forEachTeam(r, classID, func(team model.Team) error {
		updated, changed, empty := teams.RemoveMember(team, email)
		if !changed {
			return nil
		}
		if empty {
			err := s.store.DeleteTeam(r.Context(), team.ClassID, team.Project, team.Name)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		return s.store.PutTeam(r.Context(), updated)
	})
}

func (s *Server) forEachTeam(r *http.Request, classID string, fn func(model.Team) error) error {
	projects, err := s.store.ListProjects(r.Context(), classID)
	if err != nil {
		return err
	}
	for _, project := range projects {
		projectTeams, err := s.store.ListTeams(r.Context(), classID, project.Name)
		if err != nil {
			return err
		}
		for _, team := range projectTeams {
			if err := fn(team); err != nil {
				return err
			}
		}
	}
	return nil
}
