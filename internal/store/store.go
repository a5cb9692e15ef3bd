package store

import (
	"context"
	"errors"

	"github.com/SaramshGautam/collaBoard/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// ClassroomUpdate carries partial classroom edits; nil fields keep the stored
// value.
type ClassroomUpdate struct {
	Name     *string
	Semester *string
}

// ProjectUpdate carries partial project edits; nil fields keep the stored
// value.
type ProjectUpdate struct {
	DueDate     *string
	Description *string
}

// Store is the document-store surface the handlers and jobs depend on. The
// MongoDB implementation backs the server; memstore backs tests.
type Store interface {
	// Classrooms. Create is create-if-absent: a duplicate ID or a duplicate
	// (teacher, display name) pair returns ErrExists without writing.
	CreateClassroom(ctx context.Context, classroom model.Classroom) error
	GetClassroom(ctx context.Context, classID string) (model.Classroom, error)
	UpdateClassroom(ctx context.Context, classID string, update ClassroomUpdate) error
	ListClassroomIDs(ctx context.Context) ([]string, error)
	ListClassroomsByTeacher(ctx context.Context, teacherEmail string) ([]model.Classroom, error)
	ListClassroomsByStudent(ctx context.Context, studentEmail string) ([]model.Classroom, error)

	// Students, unique per (classroom, email). Upsert keeps import idempotent.
	UpsertStudent(ctx context.Context, student model.Student) error
	GetStudent(ctx context.Context, classID, email string) (model.Student, error)
	ListStudents(ctx context.Context, classID string) ([]model.Student, error)
	UpdateStudentName(ctx context.Context, classID, email, firstName, lastName string) error
	DeleteStudent(ctx context.Context, classID, email string) error

	// Users, keyed by email. CreateUserIfAbsent never overwrites.
	CreateUserIfAbsent(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, email string) (model.User, error)
	UpdateUserName(ctx context.Context, email, name string) error

	// Projects, unique per (classroom, name).
	CreateProject(ctx context.Context, project model.Project) error
	GetProject(ctx context.Context, classID, name string) (model.Project, error)
	UpdateProject(ctx context.Context, classID, name string, update ProjectUpdate) error
	DeleteProject(ctx context.Context, classID, name string) error
	ListProjects(ctx context.Context, classID string) ([]model.Project, error)
	SetProjectStatus(ctx context.Context, classID, name, status string) error

	// Teams, unique per (classroom, project, name). PutTeam replaces the
	// member map wholesale.
	PutTeam(ctx context.Context, team model.Team) error
	GetTeam(ctx context.Context, classID, project, name string) (model.Team, error)
	ListTeams(ctx context.Context, classID, project string) ([]model.Team, error)
	DeleteTeam(ctx context.Context, classID, project, name string) error
	DeleteProjectTeams(ctx context.Context, classID, project string) error

	CreateContact(ctx context.Context, message model.ContactMessage) error
}
