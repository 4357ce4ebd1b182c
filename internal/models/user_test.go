package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserIsAdmin(t *testing.T) {
	require.True(t, User{Role: RoleAdmin}.IsAdmin())
	require.False(t, User{Role: RoleMember}.IsAdmin())

	var role Role = "member"
	require.Equal(t, RoleMember, role)
}

func TestUserDisplayName(t *testing.T) {
	require.Equal(t, "Mimi", User{FirstName: "Mercy", Alias: "Mimi"}.DisplayName())
	require.Equal(t, "Mercy", User{FirstName: "Mercy"}.DisplayName())
}
