package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"campus/internal/client/api"
	"campus/internal/client/session"
	"campus/internal/dashboard"
)

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [role]",
		Short: "Show a role dashboard (defaults to your own role)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireServer(); err != nil {
				return err
			}
			s, err := a.enter("/dashboard")
			if err != nil {
				return err
			}
			role := s.Role
			if len(args) == 1 {
				role = args[0]
			}
			if role == "" {
				role = dashboard.RoleStudent
			}

			var d dashboard.Dashboard
			err = a.http.Do(cmd.Context(), http.MethodGet, "/dashboard/"+strings.ToLower(role), s.Token, nil, &d)
			var respErr *api.ResponseError
			if errors.As(err, &respErr) && respErr.Status == http.StatusUnauthorized {
				a.manager.HandleUnauthorized()
				return fmt.Errorf("session expired; run `campus login` again")
			}
			if session.IsKind(err, session.KindNotFound) {
				return fmt.Errorf("no dashboard for role %q", role)
			}
			if err != nil {
				return err
			}
			return a.printDashboard(&d)
		},
	}
}

func (a *app) printDashboard(d *dashboard.Dashboard) error {
	a.printer.Header(fmt.Sprintf("%s %s (%s)", d.Profile.Name, d.Profile.Surname, d.Role))
	if d.Profile.Detail != "" {
		a.printer.Print("%s", d.Profile.Detail)
	}

	if d.Statistics != nil {
		t := a.newTable("USERS", "TEACHERS", "CLASSES", "PASS RATE")
		t.AddRow(
			strconv.Itoa(d.Statistics.RegisteredUsers),
			strconv.Itoa(d.Statistics.Teachers),
			strconv.Itoa(d.Statistics.Classes),
			strconv.Itoa(d.Statistics.AveragePassRate)+"%",
		)
		if err := t.Render(); err != nil {
			return err
		}
	}
	if len(d.Courses) > 0 {
		a.printer.Header("Courses")
		t := a.newTable("COURSE", "TEACHER", "PROGRESS", "MASTERY")
		for _, c := range d.Courses {
			t.AddRow(c.Name, c.Teacher, strconv.Itoa(c.Progress)+"%", c.Mastery)
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	if len(d.Schedule) > 0 {
		a.printer.Header("Schedule")
		t := a.newTable("TIME", "SUBJECT", "TEACHER", "ROOM")
		for _, e := range d.Schedule {
			t.AddRow(e.Time, e.Subject, e.Teacher, e.Room)
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	if len(d.Classes) > 0 {
		a.printer.Header("Classes")
		t := a.newTable("CLASS", "GRADE", "STUDENTS")
		for _, c := range d.Classes {
			t.AddRow(c.Name, c.Grade, strconv.Itoa(c.Students))
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	if len(d.Children) > 0 {
		a.printer.Header("Children")
		t := a.newTable("NAME", "GRADE", "AVERAGE")
		for _, c := range d.Children {
			t.AddRow(c.Name+" "+c.Surname, c.Grade, strconv.Itoa(c.OverallAverage)+"%")
		}
		if err := t.Render(); err != nil {
			return err
		}
	}
	if len(d.Announcements) > 0 {
		a.printer.Header("Announcements")
		for _, n := range d.Announcements {
			a.printer.Print("%s  %s [%s]", n.Date.Format("2006-01-02"), n.Title, n.Priority)
		}
	}
	return nil
}
