package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SaramshGautam/collaBoard/internal/auth"
	"github.com/SaramshGautam/collaBoard/internal/config"
	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/store"
	"github.com/SaramshGautam/collaBoard/internal/store/memstore"
)

const (
	teacherEmail = "prof@x.edu"
	rosterCSV    = "firstname,lastname,email,lsu_id\nJo,Lee,JO@x.edu,123\nAmy,Tran,amy@x.edu,456\n"
)

func newTestEnv(t *testing.T) (*httptest.Server, *memstore.Store) {
	t.Helper()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		SessionTTL:     time.Hour,
		MaxUploadBytes: 1 << 20,
	}
	st := memstore.New()
	server := NewServer(cfg, st, auth.NewMemorySessions())
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return app, st
}

func login(t *testing.T, app *httptest.Server, role, email string) string {
	t.Helper()
	resp, err := http.PostForm(app.URL+"/login", url.Values{
		"role":      {role},
		"userEmail": {email},
	})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.Token
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func doMultipart(t *testing.T, url, token string, fields map[string]string, fileField, filename, fileContent string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(part, fileContent); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func seedClassroom(t *testing.T, st *memstore.Store, classID string, emails ...string) {
	t.Helper()
	ctx := context.Background()
	err := st.CreateClassroom(ctx, model.Classroom{
		ID:           classID,
		Name:         classID,
		TeacherEmail: teacherEmail,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed classroom: %v", err)
	}
	for _, email := range emails {
		err := st.UpsertStudent(ctx, model.Student{
			ClassID:   classID,
			Email:     email,
			FirstName: "First",
			LastName:  "Last",
		})
		if err != nil {
			t.Fatalf("seed student %s: %v", email, err)
		}
	}
}

func teamNames(t *testing.T, st *memstore.Store, classID, project string) map[string][]string {
	t.Helper()
	projectTeams, err := st.ListTeams(context.Background(), classID, project)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	byName := make(map[string][]string, len(projectTeams))
	for _, team := range projectTeams {
		emails := make([]string, 0, len(team.Members))
		for email := range team.Members {
			emails = append(emails, email)
		}
		byName[team.Name] = emails
	}
	return byName
}

func TestLoginValidation(t *testing.T) {
	app, _ := newTestEnv(t)

	resp, err := http.PostForm(app.URL+"/login", url.Values{"role": {"teacher"}})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = http.PostForm(app.URL+"/login", url.Values{
		"role":      {"janitor"},
		"userEmail": {"j@x.edu"},
	})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown role, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuthMiddleware(t *testing.T) {
	app, _ := newTestEnv(t)

	resp := doReq(t, http.MethodGet, app.URL+"/api/classrooms", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	studentToken := login(t, app, model.RoleStudent, "s1@x.edu")
	resp = doMultipart(t, app.URL+"/addclassroom", studentToken, map[string]string{"class_name": "X"}, "student_file", "r.csv", rosterCSV)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student on teacher route, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesSession(t *testing.T) {
	app, _ := newTestEnv(t)
	token := login(t, app, model.RoleTeacher, teacherEmail)

	resp := doReq(t, http.MethodPost, app.URL+"/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, app.URL+"/api/classrooms", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAddClassroomImportsRoster(t *testing.T) {
	app, st := newTestEnv(t)
	token := login(t, app, model.RoleTeacher, teacherEmail)

	fields := map[string]string{
		"class_name": "Interaction Design",
		"course_id":  "CS101",
		"semester":   "Fall 2026",
	}
	resp := doMultipart(t, app.URL+"/addclassroom", token, fields, "student_file", "roster.csv", rosterCSV)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, errorCode(t, resp))
	}
	resp.Body.Close()

	ctx := context.Background()
	student, err := st.GetStudent(ctx, "CS101", "jo@x.edu")
	if err != nil {
		t.Fatalf("expected imported student: %v", err)
	}
	if student.FirstName != "Jo" || student.LSUID != "123" {
		t.Fatalf("unexpected student doc: %+v", student)
	}
	user, err := st.GetUser(ctx, "jo@x.edu")
	if err != nil {
		t.Fatalf("expected lazily created user: %v", err)
	}
	if user.Role != model.RoleStudent || user.Name != "Lee, Jo" {
		t.Fatalf("unexpected user doc: %+v", user)
	}

	// Same course ID again is rejected before any import.
	resp = doMultipart(t, app.URL+"/addclassroom", token, fields, "student_file", "roster.csv", rosterCSV)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate classroom, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "classroom_exists" {
		t.Fatalf("expected classroom_exists, got %s", code)
	}
}

func TestAddClassroomMissingColumns(t *testing.T) {
	app, st := newTestEnv(t)
	token := login(t, app, model.RoleTeacher, teacherEmail)

	badCSV := "firstname,email\nJo,jo@x.edu\n"
	resp := doMultipart(t, app.URL+"/addclassroom", token, map[string]string{"class_name": "CS101"}, "student_file", "roster.csv", badCSV)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "missing_columns" {
		t.Fatalf("expected missing_columns, got %s", code)
	}

	// Validation failed before the classroom document was written.
	if _, err := st.GetClassroom(context.Background(), "CS101"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no classroom created, got %v", err)
	}
}

func TestEditClassroomReimportIsIdempotent(t *testing.T) {
	app, st := newTestEnv(t)
	token := login(t, app, model.RoleTeacher, teacherEmail)

	resp := doMultipart(t, app.URL+"/addclassroom", token, map[string]string{"class_name": "CS101"}, "student_file", "roster.csv", rosterCSV)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add classroom: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doMultipart(t, app.URL+"/api/classroom/CS101/edit", token, nil, "student_file", "roster.csv", rosterCSV)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit classroom: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	students, err := st.ListStudents(context.Background(), "CS101")
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students after re-import, got %d", len(students))
	}
}

func TestGetClassroomRoles(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu")

	teacherToken := login(t, app, model.RoleTeacher, teacherEmail)
	resp := doReq(t, http.MethodGet, app.URL+"/classroom/CS101", teacherToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("teacher view: expected 200, got %d", resp.StatusCode)
	}
	var view classroomResponse
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	resp.Body.Close()
	if view.Role != model.RoleTeacher {
		t.Fatalf("expected teacher role, got %s", view.Role)
	}

	studentToken := login(t, app, model.RoleStudent, "s1@x.edu")
	resp = doReq(t, http.MethodGet, app.URL+"/classroom/CS101", studentToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("student view: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	outsiderToken := login(t, app, model.RoleStudent, "outsider@x.edu")
	resp = doReq(t, http.MethodGet, app.URL+"/classroom/CS101", outsiderToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider view: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, app.URL+"/classroom/NOPE", teacherToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing classroom: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAddProjectWithTeamFile(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu", "s2@x.edu", "s3@x.edu")
	token := login(t, app, model.RoleTeacher, teacherEmail)

	teamCSV := "firstname,lastname,email,lsu_id,teamname\nA,One,s1@x.edu,1,Alpha\nB,Two,s2@x.edu,2,Alpha\nC,Three,s3@x.edu,3,Beta\n"
	fields := map[string]string{
		"project_name": "P1",
		"due_date":     "2026-12-01",
		"description":  "prototype",
	}
	resp := doMultipart(t, app.URL+"/api/add_project/CS101", token, fields, "team_file", "teams.csv", teamCSV)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, errorCode(t, resp))
	}
	var body struct {
		TeamsCreated bool `json:"teamsCreated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if !body.TeamsCreated {
		t.Fatalf("expected teamsCreated true")
	}

	byName := teamNames(t, st, "CS101", "P1")
	if len(byName["Alpha"]) != 2 || len(byName["Beta"]) != 1 {
		t.Fatalf("unexpected teams: %v", byName)
	}

	resp = doMultipart(t, app.URL+"/api/add_project/CS101", token, fields, "", "", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate project, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "project_exists" {
		t.Fatalf("expected project_exists, got %s", code)
	}
}

func TestSaveTeamsResubmission(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu", "s2@x.edu", "s3@x.edu")
	ctx := context.Background()
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	token := login(t, app, model.RoleTeacher, teacherEmail)

	submit := func(payload map[string]interface{}) *http.Response {
		return doReq(t, http.MethodPost, app.URL+"/save-teams", token, payload)
	}

	resp := submit(map[string]interface{}{
		"class_name":   "CS101",
		"project_name": "P1",
		"teams": []map[string]interface{}{
			{"teamName": "A", "students": []string{"s1@x.edu", "s2@x.edu"}},
			{"teamName": "B", "students": []string{"s3@x.edu"}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first save: expected 200, got %d (%s)", resp.StatusCode, errorCode(t, resp))
	}
	resp.Body.Close()

	resp = submit(map[string]interface{}{
		"class_name":   "CS101",
		"project_name": "P1",
		"teams": []map[string]interface{}{
			{"teamName": "A", "students": []string{"s1@x.edu"}},
			{"teamName": "B", "students": []string{"s2@x.edu", "s3@x.edu"}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resubmission: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	byName := teamNames(t, st, "CS101", "P1")
	if len(byName["A"]) != 1 || byName["A"][0] != "s1@x.edu" {
		t.Fatalf("expected A=[s1], got %v", byName["A"])
	}
	if len(byName["B"]) != 2 {
		t.Fatalf("expected s2 moved into B, got %v", byName["B"])
	}

	// Emptied teams disappear instead of persisting with no members.
	resp = submit(map[string]interface{}{
		"class_name":   "CS101",
		"project_name": "P1",
		"teams": []map[string]interface{}{
			{"teamName": "A", "students": []string{}},
			{"teamName": "B", "students": []string{"s2@x.edu", "s3@x.edu"}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("empty team save: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	byName = teamNames(t, st, "CS101", "P1")
	if _, ok := byName["A"]; ok {
		t.Fatalf("expected team A deleted, got %v", byName)
	}

	resp = submit(map[string]interface{}{
		"class_name":   "CS101",
		"project_name": "P1",
		"teams": []map[string]interface{}{
			{"teamName": "C", "students": []string{"ghost@x.edu"}},
		},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown student: expected 404, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "student_not_found" {
		t.Fatalf("expected student_not_found, got %s", code)
	}
}

func TestReplaceTeamMovesMembers(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu", "s2@x.edu", "s3@x.edu")
	ctx := context.Background()
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	seedTeam := func(name string, emails ...string) {
		members := make(map[string]model.TeamMember, len(emails))
		for _, email := range emails {
			members[email] = model.TeamMember{Name: "Last, First", Email: email}
		}
		if err := st.PutTeam(ctx, model.Team{ClassID: "CS101", Project: "P1", Name: name, Members: members}); err != nil {
			t.Fatalf("seed team %s: %v", name, err)
		}
	}
	seedTeam("A", "s1@x.edu")
	seedTeam("B", "s2@x.edu", "s3@x.edu")

	token := login(t, app, model.RoleTeacher, teacherEmail)
	resp := doReq(t, http.MethodPost, app.URL+"/api/classroom/CS101/project/P1/manage_team", token, map[string]interface{}{
		"teamName": "A",
		"students": []string{"s1@x.edu", "s2@x.edu"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, errorCode(t, resp))
	}
	resp.Body.Close()

	byName := teamNames(t, st, "CS101", "P1")
	if len(byName["A"]) != 2 {
		t.Fatalf("expected A with 2 members, got %v", byName["A"])
	}
	if len(byName["B"]) != 1 || byName["B"][0] != "s3@x.edu" {
		t.Fatalf("expected s2 moved out of B, got %v", byName["B"])
	}

	resp = doReq(t, http.MethodPost, app.URL+"/api/classroom/CS101/project/P1/manage_team", token, map[string]interface{}{
		"teamName": "Ghost",
		"students": []string{"s1@x.edu"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown team, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestManageTeamListsAvailableStudents(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu", "s2@x.edu")
	ctx := context.Background()
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := st.PutTeam(ctx, model.Team{
		ClassID: "CS101",
		Project: "P1",
		Name:    "A",
		Members: map[string]model.TeamMember{"s1@x.edu": {Name: "Last, First", Email: "s1@x.edu"}},
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	token := login(t, app, model.RoleTeacher, teacherEmail)
	resp := doReq(t, http.MethodGet, app.URL+"/api/classroom/CS101/project/P1/manage_team", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body manageTeamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	if len(body.AvailableStudents) != 1 || body.AvailableStudents[0].Email != "s2@x.edu" {
		t.Fatalf("expected only s2 available, got %+v", body.AvailableStudents)
	}
	if len(body.Teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(body.Teams))
	}
}

func TestDeleteStudentScrubsTeams(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu", "s2@x.edu")
	ctx := context.Background()
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := st.PutTeam(ctx, model.Team{
		ClassID: "CS101",
		Project: "P1",
		Name:    "A",
		Members: map[string]model.TeamMember{
			"s1@x.edu": {Name: "Last, First", Email: "s1@x.edu"},
			"s2@x.edu": {Name: "Last, First", Email: "s2@x.edu"},
		},
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	if err := st.PutTeam(ctx, model.Team{
		ClassID: "CS101",
		Project: "P1",
		Name:    "Solo",
		Members: map[string]model.TeamMember{"s1@x.edu": {Name: "Last, First", Email: "s1@x.edu"}},
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	token := login(t, app, model.RoleTeacher, teacherEmail)
	resp := doReq(t, http.MethodPost, app.URL+"/api/classroom/CS101/delete_student/s1@x.edu", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if _, err := st.GetStudent(ctx, "CS101", "s1@x.edu"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected student deleted, got %v", err)
	}
	byName := teamNames(t, st, "CS101", "P1")
	if len(byName["A"]) != 1 || byName["A"][0] != "s2@x.edu" {
		t.Fatalf("expected s1 scrubbed from A, got %v", byName["A"])
	}
	if _, ok := byName["Solo"]; ok {
		t.Fatalf("expected emptied team Solo deleted, got %v", byName)
	}
}

func TestEditStudentRefreshesDenormalizedNames(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu")
	ctx := context.Background()
	if err := st.CreateUserIfAbsent(ctx, model.User{Email: "s1@x.edu", Role: model.RoleStudent, Name: "Last, First"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := st.PutTeam(ctx, model.Team{
		ClassID: "CS101",
		Project: "P1",
		Name:    "A",
		Members: map[string]model.TeamMember{"s1@x.edu": {Name: "Last, First", Email: "s1@x.edu"}},
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	token := login(t, app, model.RoleTeacher, teacherEmail)
	resp := doReq(t, http.MethodPut, app.URL+"/api/classroom/CS101/edit_student/s1@x.edu", token, map[string]string{
		"firstName": "Ada",
		"lastName":  "Byron",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	student, err := st.GetStudent(ctx, "CS101", "s1@x.edu")
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	if student.FirstName != "Ada" || student.LastName != "Byron" {
		t.Fatalf("unexpected student after edit: %+v", student)
	}
	user, err := st.GetUser(ctx, "s1@x.edu")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Name != "Byron, Ada" {
		t.Fatalf("expected user name refreshed, got %s", user.Name)
	}
	team, err := st.GetTeam(ctx, "CS101", "P1", "A")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if team.Members["s1@x.edu"].Name != "Byron, Ada" {
		t.Fatalf("expected member name refreshed, got %s", team.Members["s1@x.edu"].Name)
	}
}

func TestStudentProjectLookups(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu", "s2@x.edu")
	ctx := context.Background()
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := st.PutTeam(ctx, model.Team{
		ClassID: "CS101",
		Project: "P1",
		Name:    "A",
		Members: map[string]model.TeamMember{"s1@x.edu": {Name: "Last, First", Email: "s1@x.edu"}},
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	token := login(t, app, model.RoleStudent, "s1@x.edu")
	resp := doReq(t, http.MethodGet, app.URL+"/api/student/s1@x.edu/project/CS101/P1", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var team studentTeamResponse
	if err := json.NewDecoder(resp.Body).Decode(&team); err != nil {
		t.Fatalf("decode team: %v", err)
	}
	resp.Body.Close()
	if team.TeamName != "A" {
		t.Fatalf("expected team A, got %s", team.TeamName)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/student/s1@x.edu/projects", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var projects struct {
		Projects []studentProjectEntry `json:"projects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	resp.Body.Close()
	if len(projects.Projects) != 1 || projects.Projects[0].TeamName != "A" {
		t.Fatalf("unexpected projects: %+v", projects.Projects)
	}

	// Unassigned student gets a 404, and nobody can read someone else's teams.
	otherToken := login(t, app, model.RoleStudent, "s2@x.edu")
	resp = doReq(t, http.MethodGet, app.URL+"/api/student/s2@x.edu/project/CS101/P1", otherToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unassigned student, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, app.URL+"/api/student/s1@x.edu/projects", otherToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for another student's listing, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteProjectRemovesTeams(t *testing.T) {
	app, st := newTestEnv(t)
	seedClassroom(t, st, "CS101", "s1@x.edu")
	ctx := context.Background()
	if err := st.CreateProject(ctx, model.Project{ClassID: "CS101", Name: "P1", DueDate: "2026-12-01"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := st.PutTeam(ctx, model.Team{
		ClassID: "CS101",
		Project: "P1",
		Name:    "A",
		Members: map[string]model.TeamMember{"s1@x.edu": {Name: "Last, First", Email: "s1@x.edu"}},
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	token := login(t, app, model.RoleTeacher, teacherEmail)
	resp := doReq(t, http.MethodDelete, app.URL+"/api/classroom/CS101/project/P1/delete", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if _, err := st.GetProject(ctx, "CS101", "P1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected project deleted, got %v", err)
	}
	remaining, err := st.ListTeams(ctx, "CS101", "P1")
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected teams deleted with project, got %d", len(remaining))
	}
}

func TestContact(t *testing.T) {
	app, st := newTestEnv(t)

	resp := doReq(t, http.MethodPost, app.URL+"/contact", "", map[string]string{
		"name":    "Sam",
		"email":   "sam@x.edu",
		"message": "The roster upload keeps timing out.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	messages := st.Contacts()
	if len(messages) != 1 || messages[0].Email != "sam@x.edu" {
		t.Fatalf("unexpected stored contacts: %+v", messages)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/contact", "", map[string]string{"name": "Sam"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
