// Package teams computes team-assignment reconciliation for a project. One
// algorithm serves every write path (file import, single-team manage,
// save-teams): callers submit the complete desired team set and receive the
// writes and deletes that make the stored state match it.
package teams

import (
	"fmt"
	"sort"

	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/roster"
)

// Assignment is one desired team: its name and the member emails.
type Assignment struct {
	TeamName string   `json:"teamName"`
	Students []string `json:"students"`
}

// Plan is the set of store operations that realizes a desired assignment.
// Writes replace each team document wholesale; Deletes removes teams that are
// absent from the submission or would end up empty.
type Plan struct {
	Writes  []model.Team
	Deletes []string
}

// UnknownStudentError reports a submitted email with no student document in
// the classroom.
type UnknownStudentError struct {
	Email string
}

func (e *UnknownStudentError) Error() string {
	return fmt.Sprintf("student %s is not part of this class", e.Email)
}

// Reconcile builds the plan for the desired team set. Rules:
//   - every member map is rebuilt from the classroom roster; an email missing
//     from roster fails with UnknownStudentError before any write
//   - a student listed in more than one desired team keeps the first listing
//   - existing teams whose name is not resubmitted are deleted
//   - a desired team left with no members is deleted, never stored empty
//
// Applying the same plan twice is a no-op, and a student ends up in at most
// one team.
func Reconcile(classID, project string, current []model.Team, desired []Assignment, roster map[string]model.TeamMember) (Plan, error) {
	var plan Plan
	assigned := make(map[string]bool)
	desiredNames := make(map[string]bool, len(desired))

	for _, assignment := range desired {
		desiredNames[assignment.TeamName] = true
		members := make(map[string]model.TeamMember, len(assignment.Students))
		for _, email := range assignment.Students {
			if assigned[email] {
				continue
			}
			member, ok := roster[email]
			if !ok {
				return Plan{}, &UnknownStudentError{Email: email}
			}
			assigned[email] = true
			members[email] = member
		}
		if len(members) == 0 {
			continue
		}
		plan.Writes = append(plan.Writes, model.Team{
			ClassID: classID,
			Project: project,
			Name:    assignment.TeamName,
			Members: members,
		})
	}

	written := make(map[string]bool, len(plan.Writes))
	for _, team := range plan.Writes {
		written[team.Name] = true
	}
	for _, team := range current {
		if !written[team.Name] {
			plan.Deletes = append(plan.Deletes, team.Name)
		}
	}
	sort.Strings(plan.Deletes)
	return plan, nil
}

// FromRows groups parsed roster rows into assignments, preserving the file's
// team order. Rows without a team name are skipped.
func FromRows(rows []roster.Row) []Assignment {
	var assignments []Assignment
	index := make(map[string]int)
	for _, row := range rows {
		if row.Team == "" {
			continue
		}
		i, ok := index[row.Team]
		if !ok {
			i = len(assignments)
			index[row.Team] = i
			assignments = append(assignments, Assignment{TeamName: row.Team})
		}
		assignments[i].Students = append(assignments[i].Students, row.Email)
	}
	return assignments
}

// RemoveMember deletes one student from a team's member map. The second
// return value reports whether the team is now empty and must be deleted.
func RemoveMember(team model.Team, email string) (model.Team, bool, bool) {
	if _, ok := team.Members[email]; !ok {
		return team, false, len(team.Members) == 0
	}
	members := make(map[string]model.TeamMember, len(team.Members)-1)
	for memberEmail, member := range team.Members {
		if memberEmail != email {
			members[memberEmail] = member
		}
	}
	team.Members = members
	return team, true, len(members) == 0
}
