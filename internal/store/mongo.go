package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SaramshGautam/collaBoard/internal/model"
)

var _ Store = (*Mongo)(nil)

type Mongo struct {
	classrooms *mongo.Collection
	students   *mongo.Collection
	users      *mongo.Collection
	projects   *mongo.Collection
	teams      *mongo.Collection
	contacts   *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		classrooms: db.Collection("classrooms"),
		students:   db.Collection("students"),
		users:      db.Collection("users"),
		projects:   db.Collection("projects"),
		teams:      db.Collection("teams"),
		contacts:   db.Collection("contacts"),
	}
}

// EnsureIndexes installs the unique indexes that give the uniqueness
// guarantees the handlers rely on: duplicate keys surface as ErrExists
// instead of a read-then-write race.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := m.classrooms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "teacher_email", Value: 1}, {Key: "name", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}
	if _, err := m.students.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "class_id", Value: 1}, {Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}
	if _, err := m.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "class_id", Value: 1}, {Key: "name", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}
	_, err := m.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "class_id", Value: 1}, {Key: "project", Value: 1}, {Key: "name", Value: 1}},
		Options: unique,
	})
	return err
}

func mapMongoErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrExists
	}
	return err
}

// Classrooms

func (m *Mongo) CreateClassroom(ctx context.Context, classroom model.Classroom) error {
	_, err := m.classrooms.InsertOne(ctx, classroom)
	return mapMongoErr(err)
}

func (m *Mongo) GetClassroom(ctx context.Context, classID string) (model.Classroom, error) {
	var classroom model.Classroom
	err := m.classrooms.FindOne(ctx, bson.M{"_id": classID}).Decode(&classroom)
	return classroom, mapMongoErr(err)
}

func (m *Mongo) UpdateClassroom(ctx context.Context, classID string, update ClassroomUpdate) error {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Semester != nil {
		set["semester"] = *update.Semester
	}
	if len(set) == 0 {
		return nil
	}
	result, err := m.classrooms.UpdateOne(ctx, bson.M{"_id": classID}, bson.M{"$set": set})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) ListClassroomIDs(ctx context.Context) ([]string, error) {
	cursor, err := m.classrooms.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (m *Mongo) ListClassroomsByTeacher(ctx context.Context, teacherEmail string) ([]model.Classroom, error) {
	return m.findClassrooms(ctx, bson.M{"teacher_email": teacherEmail})
}

func (m *Mongo) ListClassroomsByStudent(ctx context.Context, studentEmail string) ([]model.Classroom, error) {
	cursor, err := m.students.Find(ctx, bson.M{"email": studentEmail},
		options.Find().SetProjection(bson.M{"class_id": 1}))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var classIDs []string
	for cursor.Next(ctx) {
		var doc struct {
			ClassID string `bson:"class_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		classIDs = append(classIDs, doc.ClassID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if len(classIDs) == 0 {
		return nil, nil
	}
	return m.findClassrooms(ctx, bson.M{"_id": bson.M{"$in": classIDs}})
}

func (m *Mongo) findClassrooms(ctx context.Context, filter bson.M) ([]model.Classroom, error) {
	cursor, err := m.classrooms.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var classrooms []model.Classroom
	if err := cursor.All(ctx, &classrooms); err != nil {
		return nil, err
	}
	return classrooms, nil
}

// Students

func (m *Mongo) UpsertStudent(ctx context.Context, student model.Student) error {
	filter := bson.M{"class_id": student.ClassID, "email": student.Email}
	_, err := m.students.ReplaceOne(ctx, filter, student, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (m *Mongo) GetStudent(ctx context.Context, classID, email string) (model.Student, error) {
	var student model.Student
	err := m.students.FindOne(ctx, bson.M{"class_id": classID, "email": email}).Decode(&student)
	return student, mapMongoErr(err)
}

func (m *Mongo) ListStudents(ctx context.Context, classID string) ([]model.Student, error) {
	cursor, err := m.students.Find(ctx, bson.M{"class_id": classID},
		options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var students []model.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (m *Mongo) UpdateStudentName(ctx context.Context, classID, email, firstName, lastName string) error {
	result, err := m.students.UpdateOne(ctx,
		bson.M{"class_id": classID, "email": email},
		bson.M{"$set": bson.M{"first_name": firstName, "last_name": lastName}})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteStudent(ctx context.Context, classID, email string) error {
	result, err := m.students.DeleteOne(ctx, bson.M{"class_id": classID, "email": email})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

func (m *Mongo) CreateUserIfAbsent(ctx context.Context, user model.User) error {
	_, err := m.users.InsertOne(ctx, user)
	if err := mapMongoErr(err); err != nil && !errors.Is(err, ErrExists) {
		return err
	}
	return nil
}

func (m *Mongo) GetUser(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := m.users.FindOne(ctx, bson.M{"_id": email}).Decode(&user)
	return user, mapMongoErr(err)
}

func (m *Mongo) UpdateUserName(ctx context.Context, email, name string) error {
	result, err := m.users.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Projects

func (m *Mongo) CreateProject(ctx context.Context, project model.Project) error {
	_, err := m.projects.InsertOne(ctx, project)
	return mapMongoErr(err)
}

func (m *Mongo) GetProject(ctx context.Context, classID, name string) (model.Project, error) {
	var project model.Project
	err := m.projects.FindOne(ctx, bson.M{"class_id": classID, "name": name}).Decode(&project)
	return project, mapMongoErr(err)
}

func (m *Mongo) UpdateProject(ctx context.Context, classID, name string, update ProjectUpdate) error {
	set := bson.M{}
	if update.DueDate != nil {
		set["due_date"] = *update.DueDate
		// An edited due date invalidates a prior overdue mark; the sweep
		// re-evaluates it.
		set["status"] = ""
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if len(set) == 0 {
		return nil
	}
	result, err := m.projects.UpdateOne(ctx,
		bson.M{"class_id": classID, "name": name},
		bson.M{"$set": set, "$currentDate": bson.M{"updated_at": true}})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteProject(ctx context.Context, classID, name string) error {
	result, err := m.projects.DeleteOne(ctx, bson.M{"class_id": classID, "name": name})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) ListProjects(ctx context.Context, classID string) ([]model.Project, error) {
	cursor, err := m.projects.Find(ctx, bson.M{"class_id": classID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var projects []model.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (m *Mongo) SetProjectStatus(ctx context.Context, classID, name, status string) error {
	result, err := m.projects.UpdateOne(ctx,
		bson.M{"class_id": classID, "name": name},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Teams

func (m *Mongo) PutTeam(ctx context.Context, team model.Team) error {
	filter := bson.M{"class_id": team.ClassID, "project": team.Project, "name": team.Name}
	_, err := m.teams.ReplaceOne(ctx, filter, team, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (m *Mongo) GetTeam(ctx context.Context, classID, project, name string) (model.Team, error) {
	var team model.Team
	err := m.teams.FindOne(ctx, bson.M{"class_id": classID, "project": project, "name": name}).Decode(&team)
	return team, mapMongoErr(err)
}

func (m *Mongo) ListTeams(ctx context.Context, classID, project string) ([]model.Team, error) {
	cursor, err := m.teams.Find(ctx, bson.M{"class_id": classID, "project": project},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	var teams []model.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (m *Mongo) DeleteTeam(ctx context.Context, classID, project, name string) error {
	result, err := m.teams.DeleteOne(ctx, bson.M{"class_id": classID, "project": project, "name": name})
	if err != nil {
		return mapMongoErr(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteProjectTeams(ctx context.Context, classID, project string) error {
	_, err := m.teams.DeleteMany(ctx, bson.M{"class_id": classID, "project": project})
	return mapMongoErr(err)
}

// Contacts

func (m *Mongo) CreateContact(ctx context.Context, message model.ContactMessage) error {
	_, err := m.contacts.InsertOne(ctx, message)
	return mapMongoErr(err)
}
