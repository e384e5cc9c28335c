package dashboard

import "time"

func date(month time.Month, day int) time.Time {
	return time.Date(2026, month, day, 0, 0, 0, 0, time.UTC)
}

var schedule = []ScheduleEntry{
	{Time: "08:00", Subject: "Mathematics", Teacher: "Mr. Brown", Room: "Room 101"},
	{Time: "09:00", Subject: "Physics", Teacher: "Dr. Wilson", Room: "Lab 2"},
	{Time: "10:30", Subject: "Chemistry", Teacher: "Ms. Davis", Room: "Lab 1"},
	{Time: "12:00", Subject: "English", Teacher: "Mrs. Taylor", Room: "Room 205"},
}

var emmaGrades = []Grade{
	{Subject: "Mathematics", Grade: "A-", Percentage: 82, Struggling: []string{"Calculus"}, Mastered: []string{"Algebra", "Geometry"}},
	{Subject: "Physics", Grade: "B+", Percentage: 78, Struggling: []string{"Quantum Physics"}, Mastered: []string{"Mechanics", "Waves"}},
	{Subject: "Chemistry", Grade: "A", Percentage: 88, Struggling: []string{}, Mastered: []string{"Organic Chemistry", "Acids & Bases"}},
}

var announcements = []Announcement{
	{Title: "Parent-Teacher Conference Schedule", Date: date(time.March, 12), Priority: "important"},
	{Title: "Sports Day Registration Open", Date: date(time.March, 20), Priority: "regular"},
}

var staff = []StaffMember{
	{Name: "John Smith", Department: "Mathematics", EmployeeID: "T001", OverallScore: 45, PassRate: 52},
	{Name: "Sarah Johnson", Department: "English", EmployeeID: "T002", OverallScore: 88, PassRate: 92},
	{Name: "Mike Brown", Department: "Science", EmployeeID: "T003", OverallScore: 58, PassRate: 68},
	{Name: "Lisa Davis", Department: "History", EmployeeID: "T004", OverallScore: 92, PassRate: 95},
}

var teacherClasses = []Class{
	{Name: "Mathematics 10A", Grade: "Grade 10", Students: 25},
	{Name: "Mathematics 11B", Grade: "Grade 11", Students: 28},
	{Name: "Mathematics 12C", Grade: "Grade 12", Students: 22},
}

// seeded builds a fresh copy of the static dashboard for role.
func seeded(role string) (*Dashboard, bool) {
	switch role {
	case RoleStudent:
		return &Dashboard{
			Role:    role,
			Profile: Profile{Name: "Emma", Surname: "Johnson", Detail: "Grade 10"},
			Courses: []Course{
				{Name: "Mathematics", Teacher: "Mr. Brown", Progress: 75, Mastery: "proficient"},
				{Name: "Physics", Teacher: "Dr. Wilson", Progress: 60, Mastery: "developing"},
				{Name: "Chemistry", Teacher: "Ms. Davis", Progress: 85, Mastery: "advanced"},
			},
			Grades:        append([]Grade(nil), emmaGrades...),
			Schedule:      append([]ScheduleEntry(nil), schedule...),
			Announcements: append([]Announcement(nil), announcements...),
		}, true
	case RoleTeacher:
		return &Dashboard{
			Role:    role,
			Profile: Profile{Name: "Sarah", Surname: "Johnson", Detail: "Mathematics"},
			Classes: append([]Class(nil), teacherClasses...),
			Assignments: []Assignment{
				{Class: "Mathematics 10A", Title: "Quadratic functions worksheet", DueDate: date(time.March, 14), Pending: 9},
				{Class: "Mathematics 12C", Title: "Calculus mock exam", DueDate: date(time.March, 18), Pending: 6},
			},
			Announcements: append([]Announcement(nil), announcements...),
		}, true
	case RoleParent:
		return &Dashboard{
			Role:    role,
			Profile: Profile{Name: "Michael", Surname: "Johnson", Detail: "Parent"},
			Children: []Child{{
				Name: "Emma", Surname: "Johnson", Grade: "Grade 10", OverallAverage: 83,
				Subjects: append([]Grade(nil), emmaGrades...),
			}},
			Schedule:      append([]ScheduleEntry(nil), schedule...),
			Announcements: append([]Announcement(nil), announcements...),
		}, true
	case RoleAdmin:
		return &Dashboard{
			Role:    role,
			Profile: Profile{Name: "System", Surname: "Administrator", Detail: "Administration"},
			Staff:   append([]StaffMember(nil), staff...),
			Statistics: &Statistics{
				Teachers:        len(staff),
				Classes:         len(teacherClasses),
				AveragePassRate: averagePassRate(staff),
			},
		}, true
	}
	return nil, false
}

func averagePassRate(members []StaffMember) int {
	if len(members) == 0 {
		return 0
	}
	total := 0
	for _, m := range members {
		total += m.PassRate
	}
	return total / len(members)
}
