package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/store"
	"github.com/SaramshGautam/collaBoard/internal/teams"
)

type manageTeamResponse struct {
	AvailableStudents []model.Student `json:"availableStudents"`
	Teams             []model.Team    `json:"teams"`
}

func (s *Server) handleManageTeam(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	projectName := chi.URLParam(r, "projectName")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}
	if !s.projectExists(w, r, classID, projectName) {
		return
	}

	students, err := s.store.ListStudents(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	projectTeams, err := s.store.ListTeams(r.Context(), classID, projectName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	assigned := make(map[string]bool)
	for _, team := range projectTeams {
		for email := range team.Members {
			assigned[email] = true
		}
	}
	available := make([]model.Student, 0, len(students))
	for _, student := range students {
		if !assigned[student.Email] {
			available = append(available, student)
		}
	}
	if projectTeams == nil {
		projectTeams = []model.Team{}
	}

	writeJSON(w, http.StatusOK, manageTeamResponse{AvailableStudents: available, Teams: projectTeams})
}

type replaceTeamRequest struct {
	TeamName string   `json:"teamName"`
	Students []string `json:"students"`
}

// handleReplaceTeam rewrites one named team's membership. Students pulled in
// from other teams are moved, and the team is deleted if it ends up empty.
func (s *Server) handleReplaceTeam(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	projectName := chi.URLParam(r, "projectName")
	if _, ok := s.classroomForTeacher(w, r, classID); !ok {
		return
	}

	var req replaceTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.TeamName = strings.TrimSpace(req.TeamName)
	if req.TeamName == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_fields", "Team name is required.")
		return
	}

	current, err := s.store.ListTeams(r.Context(), classID, projectName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	found := false
	for _, team := range current {
		if team.Name == req.TeamName {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "team_not_found")
		return
	}

	// The edited team goes first so its listings win over the members' old
	// teams, which keep only whoever was not pulled away.
	desired := []teams.Assignment{{TeamName: req.TeamName, Students: normalizeEmails(req.Students)}}
	for _, team := range current {
		if team.Name == req.TeamName {
			continue
		}
		desired = append(desired, teams.Assignment{TeamName: team.Name, Students: memberEmails(team)})
	}

	if _, ok := s.reconcileTeams(w, r, classID, projectName, desired); !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Team updated successfully."})
}

type saveTeamsRequest struct {
	ClassName   string             `json:"class_name"`
	ProjectName string             `json:"project_name"`
	Teams       []teams.Assignment `json:"teams"`
}

func (s *Server) handleSaveTeams(w http.ResponseWriter, r *http.Request) {
	var req saveTeamsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.ClassName = strings.TrimSpace(req.ClassName)
	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if req.ClassName == "" || req.ProjectName == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing_fields", "Class and project are required.")
		return
	}

	if _, ok := s.classroomForTeacher(w, r, req.ClassName); !ok {
		return
	}
	if !s.projectExists(w, r, req.ClassName, req.ProjectName) {
		return
	}

	for i := range req.Teams {
		req.Teams[i].Students = normalizeEmails(req.Teams[i].Students)
	}
	if _, ok := s.reconcileTeams(w, r, req.ClassName, req.ProjectName, req.Teams); !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Teams saved successfully."})
}

type studentTeamResponse struct {
	TeamName string             `json:"teamName"`
	Members  []model.TeamMember `json:"members"`
}

func (s *Server) handleStudentProjectTeam(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	email := strings.ToLower(chi.URLParam(r, "email"))
	classID := chi.URLParam(r, "classID")
	projectName := chi.URLParam(r, "projectName")

	classroom, err := s.store.GetClassroom(r.Context(), classID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "classroom_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if claims.Email != email && claims.Email != classroom.TeacherEmail {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if !s.projectExists(w, r, classID, projectName) {
		return
	}

	projectTeams, err := s.store.ListTeams(r.Context(), classID, projectName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	for _, team := range projectTeams {
		if _, ok := team.Members[email]; ok {
			members := make([]model.TeamMember, 0, len(team.Members))
			for _, member := range team.Members {
				members = append(members, member)
			}
			writeJSON(w, http.StatusOK, studentTeamResponse{TeamName: team.Name, Members: members})
			return
		}
	}
	writeError(w, http.StatusNotFound, "team_not_found")
}

type studentProjectEntry struct {
	ClassID     string `json:"classID"`
	ClassName   string `json:"className"`
	ProjectName string `json:"projectName"`
	DueDate     string `json:"dueDate"`
	TeamName    string `json:"teamName"`
}

func (s *Server) handleStudentProjects(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	email := strings.ToLower(chi.URLParam(r, "email"))
	if claims.Email != email {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	classrooms, err := s.store.ListClassroomsByStudent(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	entries := []studentProjectEntry{}
	for _, classroom := range classrooms {
		projects, err := s.store.ListProjects(r.Context(), classroom.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		for _, project := range projects {
			projectTeams, err := s.store.ListTeams(r.Context(), classroom.ID, project.Name)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "server_error")
				return
			}
			for _, team := range projectTeams {
				if _, ok := team.Members[email]; ok {
					entries = append(entries, studentProjectEntry{
						ClassID:     classroom.ID,
						ClassName:   classroom.Name,
						ProjectName: project.Name,
						DueDate:     project.DueDate,
						TeamName:    team.Name,
					})
					break
				}
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": entries})
}

// reconcileTeams runs the shared reconciliation against the classroom roster
// and applies the resulting plan. On failure the response is already written.
func (s *Server) reconcileTeams(w http.ResponseWriter, r *http.Request, classID, projectName string, desired []teams.Assignment) (teams.Plan, bool) {
	students, err := s.store.ListStudents(r.Context(), classID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return teams.Plan{}, false
	}
	members := make(map[string]model.TeamMember, len(students))
	for _, student := range students {
		members[student.Email] = model.TeamMember{Name: student.DisplayName(), Email: student.Email}
	}

	current, err := s.store.ListTeams(r.Context(), classID, projectName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return teams.Plan{}, false
	}

	plan, err := teams.Reconcile(classID, projectName, current, desired, members)
	if err != nil {
		var unknown *teams.UnknownStudentError
		if errors.As(err, &unknown) {
			writeErrorMessage(w, http.StatusNotFound, "student_not_found", unknown.Error())
			return teams.Plan{}, false
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return teams.Plan{}, false
	}

	for _, team := range plan.Writes {
		if err := s.store.PutTeam(r.Context(), team); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return teams.Plan{}, false
		}
	}
	for _, name := range plan.Deletes {
		if err := s.store.DeleteTeam(r.Context(), classID, projectName, name); err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "server_error")
			return teams.Plan{}, false
		}
	}
	return plan, true
}

func (s *Server) projectExists(w http.ResponseWriter, r *http.Request, classID, projectName string) bool {
	if _, err := s.store.GetProject(r.Context(), classID, projectName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project_not_found")
		} else {
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return false
	}
	return true
}

func memberEmails(team model.Team) []string {
	emails := make([]string, 0, len(team.Members))
	for email := range team.Members {
		emails = append(emails, email)
	}
	return emails
}

func normalizeEmails(emails []string) []string {
	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email != "" {
			normalized = append(normalized, email)
		}
	}
	return normalized
}
