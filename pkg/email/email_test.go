package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	valid := []string{"jane@example.com", "john.doe+tag@school.example.org"}
	for _, addr := range valid {
		assert.True(t, IsValid(addr), addr)
	}
	invalid := []string{"", "jane", "jane@", "@example.com", "jane@localhost", "Jane <jane@example.com>", "jane@@example.com"}
	for _, addr := range invalid {
		assert.False(t, IsValid(addr), addr)
	}
}

func TestSplitDisplayName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"Jane Smith", "Jane", "Smith"},
		{"Mary Ann Lee", "Mary", "Ann Lee"},
		{"Cher", "Cher", ""},
		{"  Jane   Smith ", "Jane", "Smith"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitDisplayName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestJoinDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Smith", JoinDisplayName("Jane", "Smith"))
	assert.Equal(t, "Cher", JoinDisplayName("Cher", ""))
}

func TestDeriveNameFromEmail(t *testing.T) {
	assert.Equal(t, "Jane", DeriveNameFromEmail("jane.smith@example.com"))
	assert.Equal(t, "there", DeriveNameFromEmail("@example.com"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jane@example.com", Normalize("  Jane@Example.COM "))
}
