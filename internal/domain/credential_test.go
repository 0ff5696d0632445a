package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "amy@example.com", NormalizeEmail("  Amy@Example.COM "))
	assert.Equal(t, "amy@example.com", NormalizeEmail("amy@example.com"))
}

func TestCredential_JSONNeverContainsHash(t *testing.T) {
	c := Credential{
		ID:           "c-1",
		Email:        "amy@example.com",
		PasswordHash: "$2a$10$secret",
		UserName:     "amy",
		Role:         RoleCandidate,
		IsActive:     true,
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}

func TestCredential_Identity(t *testing.T) {
	c := Credential{ID: "c-1", Email: "amy@example.com", PasswordHash: "h", Role: RoleEmployer}
	id := c.Identity()

	assert.Equal(t, "c-1", id.ID)
	assert.Equal(t, "amy@example.com", id.Email)
	assert.Equal(t, RoleEmployer, id.Role)
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleCandidate.Valid())
	assert.True(t, RoleEmployer.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
