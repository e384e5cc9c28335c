package testutil

import "testing"

// Scenario runs Given/When/Then steps as ordered subtests. Once a step fails
// the remaining steps are skipped, since they depend on its outcome.
type Scenario struct {
	t      *testing.T
	failed bool
}

func NewScenario(t *testing.T) *Scenario {
	return &Scenario{t: t}
}

func (s *Scenario) step(prefix, desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	ok := s.t.Run(prefix+" "+desc, func(t *testing.T) {
		if s.failed {
			t.Skip("previous step failed")
		}
		fn(t)
	})
	if !ok {
		s.failed = true
	}
	return s
}

func (s *Scenario) Given(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("Given", desc, fn)
}

func (s *Scenario) When(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("When", desc, fn)
}

func (s *Scenario) Then(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("Then", desc, fn)
}

func (s *Scenario) And(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("And", desc, fn)
}
