package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Run("independent instances do not collide", func(t *testing.T) {
		a := New()
		b := New()
		a.IncUsersRegistered()

		assert.Equal(t, 1.0, testutil.ToFloat64(a.UsersRegistered))
		assert.Equal(t, 0.0, testutil.ToFloat64(b.UsersRegistered))
	})

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.IncLogin("success")
			m.IncCodeIssued("registration")
			m.ObserveRequest("/auth/login", "2xx", 0.01)
		})
	})

	t.Run("labels are recorded", func(t *testing.T) {
		m := New()
		m.IncLogin("invalid_credentials")
		m.IncLogin("invalid_credentials")
		m.IncCodeCheck("password-reset", "mismatch")

		assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("invalid_credentials")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeVerifications.WithLabelValues("password-reset", "mismatch")))
	})
}
