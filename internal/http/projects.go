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
	"github.com/SaramshGautam/collaBoard/internal/teams"
)

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	if err := s.parseMultipart(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	projectName := strings.TrimSpace(r.PostFormValue("project_name"))
	dueDate := strings.TrimSpace(r.PostFormValue("due_date"))
	description := strings.TrimSpace(r.PostFormValue("description"))
	if projectName == "" || dueDate == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_fields", "Project name and due date are required.")
		return
	}

	rows, ok := s.rosterUpload(w, r, "team_file", roster.TeamColumns, false)
	if !ok {
		return
	}

	now := time.Now().UTC()
	project := model.Project{
		ClassID:     classID,
		Name:        projectName,
		DueDate:     dueDate,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		if errors.Is(err, store.ErrExists) {
			writeErrorMessage(w, http.StatusBadRequest, "project_exists", "A project with this name already exists.")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	teamsCreated := false
	if rows != nil {
		plan, ok := s.reconcileTeams(w, r, classID, projectName, teams.FromRows(rows))
		if !ok {
			return
		}
		teamsCreated = len(plan.Writes) > 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Project added successfully.",
		"teamsCreated": teamsCreated,
	})
}

func (s *Server) handleEditProject(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	projectName := chi.URLParam(r, "projectName")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	if err := s.parseMultipart(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if _, err := s.store.GetProject(r.Context(), classID, projectName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	update := store.ProjectUpdate{}
	if dueDate := strings.TrimSpace(r.PostFormValue("due_date")); dueDate != "" {
		update.DueDate = &dueDate
	}
	if description := strings.TrimSpace(r.PostFormValue("description")); description != "" {
		update.Description = &description
	}

	rows, ok := s.rosterUpload(w, r, "team_file", roster.TeamColumns, false)
	if !ok {
		return
	}

	if update.DueDate != nil || update.Description != nil {
		if err := s.store.UpdateProject(r.Context(), classID, projectName, update); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}
	if rows != nil {
		if _, ok := s.reconcileTeams(w, r, classID, projectName, teams.FromRows(rows)); !ok {
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Project updated successfully."})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	projectName := chi.URLParam(r, "projectName")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}

	if _, err := s.store.GetProject(r.Context(), classID, projectName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := s.store.DeleteProjectTeams(r.Context(), classID, projectName); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.store.DeleteProject(r.Context(), classID, projectName); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully."})
}
