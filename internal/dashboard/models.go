// Package dashboard serves the role landing pages of the portal. Content is
// seeded static data; only the admin statistics read live figures.
package dashboard

import "time"

// Role names accepted in GET /dashboard/{role}.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

type Profile struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Detail  string `json:"detail"`
}

type Course struct {
	Name     string `json:"name"`
	Teacher  string `json:"teacher"`
	Progress int    `json:"progress"`
	Mastery  string `json:"mastery"`
}

type Grade struct {
	Subject    string   `json:"subject"`
	Grade      string   `json:"grade"`
	Percentage int      `json:"percentage"`
	Struggling []string `json:"struggling"`
	Mastered   []string `json:"mastered"`
}

type ScheduleEntry struct {
	Time    string `json:"time"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

type Class struct {
	Name     string `json:"name"`
	Grade    string `json:"grade"`
	Students int    `json:"students"`
}

type Assignment struct {
	Class   string    `json:"class"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"dueDate"`
	Pending int       `json:"pendingGrading"`
}

type Child struct {
	Name           string  `json:"name"`
	Surname        string  `json:"surname"`
	Grade          string  `json:"grade"`
	OverallAverage int     `json:"overallAverage"`
	Subjects       []Grade `json:"subjects"`
}

type StaffMember struct {
	Name         string `json:"name"`
	Department   string `json:"department"`
	EmployeeID   string `json:"employeeId"`
	OverallScore int    `json:"overallScore"`
	PassRate     int    `json:"passRate"`
}

type Statistics struct {
	RegisteredUsers int `json:"registeredUsers"`
	Teachers        int `json:"teachers"`
	Classes         int `json:"classes"`
	AveragePassRate int `json:"averagePassRate"`
}

type Announcement struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Priority string    `json:"priority"`
}

// Dashboard is the payload for one role. Sections not used by a role are omitted.
type Dashboard struct {
	Role          string          `json:"role"`
	Profile       Profile         `json:"profile"`
	Courses       []Course        `json:"courses,omitempty"`
	Grades        []Grade         `json:"grades,omitempty"`
	Schedule      []ScheduleEntry `json:"schedule,omitempty"`
	Classes       []Class         `json:"classes,omitempty"`
	Assignments   []Assignment    `json:"assignments,omitempty"`
	Children      []Child         `json:"children,omitempty"`
	Staff         []StaffMember   `json:"staff,omitempty"`
	Statistics    *Statistics     `json:"statistics,omitempty"`
	Announcements []Announcement  `json:"announcements,omitempty"`
}
