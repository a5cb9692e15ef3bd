package model

import "time"

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Classroom is keyed by its course ID (or the display name when no course ID
// was provided at creation).
type Classroom struct {
	ID           string    `bson:"_id" json:"classID"`
	Name         string    `bson:"name" json:"className"`
	TeacherEmail string    `bson:"teacher_email" json:"teacherEmail"`
	Semester     string    `bson:"semester,omitempty" json:"semester,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// Student is unique per (classroom, email).
type Student struct {
	ClassID    string    `bson:"class_id" json:"-"`
	Email      string    `bson:"email" json:"email"`
	FirstName  string    `bson:"first_name" json:"firstName"`
	LastName   string    `bson:"last_name" json:"lastName"`
	LSUID      string    `bson:"lsu_id" json:"lsuId"`
	AssignedAt time.Time `bson:"assigned_at" json:"assignedAt"`
}

// DisplayName renders the denormalized "Last, First" form stored on users and
// team members.
func (s Student) DisplayName() string {
	return s.LastName + ", " + s.FirstName
}

// User is keyed by email and created lazily the first time a student appears
// in any roster. It is never overwritten once present.
type User struct {
	Email     string    `bson:"_id" json:"email"`
	Role      string    `bson:"role" json:"role"`
	Name      string    `bson:"name" json:"name"`
	LSUID     string    `bson:"lsu_id,omitempty" json:"lsuId,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

const ProjectStatusOverdue = "overdue"

// Project is unique per (classroom, name). DueDate keeps the submitted string
// form; the sweep parses it when marking projects overdue.
type Project struct {
	ClassID     string    `bson:"class_id" json:"-"`
	Name        string    `bson:"name" json:"projectName"`
	DueDate     string    `bson:"due_date" json:"dueDate"`
	Description string    `bson:"description" json:"description"`
	Status      string    `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

type TeamMember struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

// Team is unique per (classroom, project, name). Members is keyed by student
// email; an empty team is deleted, never persisted.
type Team struct {
	ClassID string                `bson:"class_id" json:"-"`
	Project string                `bson:"project" json:"-"`
	Name    string                `bson:"name" json:"teamName"`
	Members map[string]TeamMember `bson:"members" json:"members"`
}

type ContactMessage struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
