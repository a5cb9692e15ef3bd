// Package memstore is a map-backed store.Store used by handler tests. It
// mirrors the MongoDB implementation's contract, including the uniqueness
// rules the unique indexes enforce.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/store"
)

var _ store.Store = (*Store)(nil)

type studentKey struct {
	classID string
	email   string
}

type projectKey struct {
	classID string
	name    string
}

type teamKey struct {
	classID string
	project string
	name    string
}

type Store struct {
	mu         sync.Mutex
	classrooms map[string]model.Classroom
	students   map[studentKey]model.Student
	users      map[string]model.User
	projects   map[projectKey]model.Project
	teams      map[teamKey]model.Team
	contacts   map[string]model.ContactMessage
}

func New() *Store {
	return &Store{
		classrooms: make(map[string]model.Classroom),
		students:   make(map[studentKey]model.Student),
		users:      make(map[string]model.User),
		projects:   make(map[projectKey]model.Project),
		teams:      make(map[teamKey]model.Team),
		contacts:   make(map[string]model.ContactMessage),
	}
}

// Classrooms

func (s *Store) CreateClassroom(_ context.Context, classroom model.Classroom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classrooms[classroom.ID]; ok {
		return store.ErrExists
	}
	for _, existing := range s.classrooms {
		if existing.TeacherEmail == classroom.TeacherEmail && existing.Name == classroom.Name {
			return store.ErrExists
		}
	}
	s.classrooms[classroom.ID] = classroom
	return nil
}

func (s *Store) GetClassroom(_ context.Context, classID string) (model.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	classroom, ok := s.classrooms[classID]
	if !ok {
		return model.Classroom{}, store.ErrNotFound
	}
	return classroom, nil
}

func (s *Store) UpdateClassroom(_ context.Context, classID string, update store.ClassroomUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	classroom, ok := s.classrooms[classID]
	if !ok {
		return store.ErrNotFound
	}
	if update.Name != nil {
		classroom.Name = *update.Name
	}
	if update.Semester != nil {
		classroom.Semester = *update.Semester
	}
	s.classrooms[classID] = classroom
	return nil
}

func (s *Store) ListClassroomIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.classrooms))
	for id := range s.classrooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ListClassroomsByTeacher(_ context.Context, teacherEmail string) ([]model.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var classrooms []model.Classroom
	for _, classroom := range s.classrooms {
		if classroom.TeacherEmail == teacherEmail {
			classrooms = append(classrooms, classroom)
		}
	}
	sortClassrooms(classrooms)
	return classrooms, nil
}

func (s *Store) ListClassroomsByStudent(_ context.Context, studentEmail string) ([]model.Classroom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var classrooms []model.Classroom
	for key, student := range s.students {
		if student.Email != studentEmail {
			continue
		}
		if classroom, ok := s.classrooms[key.classID]; ok {
			classrooms = append(classrooms, classroom)
		}
	}
	sortClassrooms(classrooms)
	return classrooms, nil
}

func sortClassrooms(classrooms []model.Classroom) {
	sort.Slice(classrooms, func(i, j int) bool { return classrooms[i].ID < classrooms[j].ID })
}

// Students

func (s *Store) UpsertStudent(_ context.Context, student model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[studentKey{student.ClassID, student.Email}] = student
	return nil
}

func (s *Store) GetStudent(_ context.Context, classID, email string) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	student, ok := s.students[studentKey{classID, email}]
	if !ok {
		return model.Student{}, store.ErrNotFound
	}
	return student, nil
}

func (s *Store) ListStudents(_ context.Context, classID string) ([]model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var students []model.Student
	for key, student := range s.students {
		if key.classID == classID {
			students = append(students, student)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Email < students[j].Email })
	return students, nil
}

func (s *Store) UpdateStudentName(_ context.Context, classID, email, firstName, lastName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := studentKey{classID, email}
	student, ok := s.students[key]
	if !ok {
		return store.ErrNotFound
	}
	student.FirstName = firstName
	student.LastName = lastName
	s.students[key] = student
	return nil
}

func (s *Store) DeleteStudent(_ context.Context, classID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := studentKey{classID, email}
	if _, ok := s.students[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.students, key)
	return nil
}

// Users

func (s *Store) CreateUserIfAbsent(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return nil
	}
	s.users[user.Email] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *Store) UpdateUserName(_ context.Context, email, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return store.ErrNotFound
	}
	user.Name = name
	s.users[email] = user
	return nil
}

// Projects

func (s *Store) CreateProject(_ context.Context, project model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectKey{project.ClassID, project.Name}
	if _, ok := s.projects[key]; ok {
		return store.ErrExists
	}
	s.projects[key] = project
	return nil
}

func (s *Store) GetProject(_ context.Context, classID, name string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectKey{classID, name}]
	if !ok {
		return model.Project{}, store.ErrNotFound
	}
	return project, nil
}

func (s *Store) UpdateProject(_ context.Context, classID, name string, update store.ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectKey{classID, name}
	project, ok := s.projects[key]
	if !ok {
		return store.ErrNotFound
	}
	if update.DueDate != nil {
		project.DueDate = *update.DueDate
		project.Status = ""
	}
	if update.Description != nil {
		project.Description = *update.Description
	}
	project.UpdatedAt = time.Now().UTC()
	s.projects[key] = project
	return nil
}

func (s *Store) DeleteProject(_ context.Context, classID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectKey{classID, name}
	if _, ok := s.projects[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.projects, key)
	return nil
}

func (s *Store) ListProjects(_ context.Context, classID string) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var projects []model.Project
	for key, project := range s.projects {
		if key.classID == classID {
			projects = append(projects, project)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (s *Store) SetProjectStatus(_ context.Context, classID, name, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectKey{classID, name}
	project, ok := s.projects[key]
	if !ok {
		return store.ErrNotFound
	}
	project.Status = status
	s.projects[key] = project
	return nil
}

// Teams

func (s *Store) PutTeam(_ context.Context, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make(map[string]model.TeamMember, len(team.Members))
	for email, member := range team.Members {
		members[email] = member
	}
	team.Members = members
	s.teams[teamKey{team.ClassID, team.Project, team.Name}] = team
	return nil
}

func (s *Store) GetTeam(_ context.Context, classID, project, name string) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[teamKey{classID, project, name}]
	if !ok {
		return model.Team{}, store.ErrNotFound
	}
	return copyTeam(team), nil
}

func (s *Store) ListTeams(_ context.Context, classID, project string) ([]model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var teams []model.Team
	for key, team := range s.teams {
		if key.classID == classID && key.project == project {
			teams = append(teams, copyTeam(team))
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (s *Store) DeleteTeam(_ context.Context, classID, project, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := teamKey{classID, project, name}
	if _, ok := s.teams[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.teams, key)
	return nil
}

func (s *Store) DeleteProjectTeams(_ context.Context, classID, project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.teams {
		if key.classID == classID && key.project == project {
			delete(s.teams, key)
		}
	}
	return nil
}

func copyTeam(team model.Team) model.Team {
	members := make(map[string]model.TeamMember, len(team.Members))
	for email, member := range team.Members {
		members[email] = member
	}
	team.Members = members
	return team
}

// Contacts

func (s *Store) CreateContact(_ context.Context, message model.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[message.ID]; ok {
		return store.ErrExists
	}
	s.contacts[message.ID] = message
	return nil
}

// Contacts returns stored contact messages, newest last. Test helper.
func (s *Store) Contacts() []model.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]model.ContactMessage, 0, len(s.contacts))
	for _, message := range s.contacts {
		messages = append(messages, message)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages
}
