package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SaramshGautam/collaBoard/internal/auth"
	"github.com/SaramshGautam/collaBoard/internal/config"
	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/store"
)

type Server struct {
	cfg      config.Config
	store    store.Store
	sessions auth.SessionStore
}

func NewServer(cfg config.Config, st store.Store, sessions auth.SessionStore) *Server {
	return &Server{cfg: cfg, store: st, sessions: sessions}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", s.handleLogin)
	r.With(s.authMiddleware).Post("/logout", s.handleLogout)

	r.Post("/contact", s.handleContact)

	r.With(s.authMiddleware, s.requireTeacher).Post("/addclassroom", s.handleAddClassroom)
	r.With(s.authMiddleware).Get("/classroom/{classID}", s.handleGetClassroom)
	r.With(s.authMiddleware).Get("/api/classrooms", s.handleListClassrooms)

	r.With(s.authMiddleware).Post("/save-teams", s.handleSaveTeams)
	r.With(s.authMiddleware, s.requireTeacher).Post("/api/add_project/{classID}", s.handleAddProject)

	r.Route("/api/classroom/{classID}", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.With(s.requireTeacher).Post("/edit", s.handleEditClassroom)

		r.With(s.requireTeacher).Get("/manage_students", s.handleManageStudents)
		r.With(s.requireTeacher).Post("/add_student", s.handleAddStudent)
		r.With(s.requireTeacher).Get("/edit_student/{email}", s.handleGetStudent)
		r.With(s.requireTeacher).Put("/edit_student/{email}", s.handleEditStudent)
		r.With(s.requireTeacher).Post("/delete_student/{email}", s.handleDeleteStudent)

		r.Route("/project/{projectName}", func(r chi.Router) {
			r.With(s.requireTeacher).Post("/edit", s.handleEditProject)
			r.With(s.requireTeacher).Delete("/delete", s.handleDeleteProject)
			r.With(s.requireTeacher).Get("/manage_team", s.handleManageTeam)
			r.With(s.requireTeacher).Post("/manage_team", s.handleReplaceTeam)
		})
	})

	r.Route("/api/student/{email}", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/projects", s.handleStudentProjects)
		r.Get("/project/{classID}/{projectName}", s.handleStudentProjectTeam)
	})

	return r
}

type loginRequest struct {
	Role  string
	Email string
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req := loginRequest{
		Role:  strings.TrimSpace(strings.ToLower(r.PostFormValue("role"))),
		Email: strings.TrimSpace(strings.ToLower(r.PostFormValue("userEmail"))),
	}
	if req.Role == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}
	if req.Role != model.RoleTeacher && req.Role != model.RoleStudent {
		writeError(w, http.StatusUnauthorized, "unknown_role")
		return
	}

	identity := auth.Identity{Email: req.Email, Role: req.Role}
	sessionID := uuid.NewString()
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, sessionID, s.cfg.SessionTTL, identity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	if err := s.sessions.Put(r.Context(), sessionID, identity, s.cfg.SessionTTL); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, Email: identity.Email, Role: identity.Role})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if err := s.sessions.Delete(r.Context(), claims.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	message := model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateContact(r.Context(), message); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message received."})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		_, live, err := s.sessions.Get(r.Context(), claims.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if !live {
			writeError(w, http.StatusUnauthorized, "session_expired")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.Role != model.RoleTeacher {
			writeError(w, http.StatusForbidden, "teacher_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// classroomForTeacher loads the classroom and enforces that the caller owns
// it. On failure the response has already been written.
func (s *Server) classroomForTeacher(w http.ResponseWriter, r *http.Request, classID string) (model.Classroom, bool) {
	classroom, err := s.store.GetClassroom(r.Context(), classID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "classroom_not_found")
		} else {
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return model.Classroom{}, false
	}
	claims := claimsFromContext(r.Context())
	if claims == nil || claims.Email != classroom.TeacherEmail {
		writeError(w, http.StatusForbidden, "forbidden")
		return model.Classroom{}, false
	}
	return classroom, true
}

func (s *Server) parseMultipart(r *http.Request) error {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.MaxUploadBytes)
	return r.ParseMultipartForm(s.cfg.MaxUploadBytes)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeErrorMessage adds a human-readable message next to the machine code.
func writeErrorMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
