package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRoleName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"admin", "Admin"},
		{"ADMIN", "Admin"},
		{"  Content Editor ", "Content Editor"},
		{"content_editor", "Content Editor"},
		{"CONTENT_editor", "Content Editor"},
		{"content  editor", "Content  Editor"},
		{"site-admin", "Site-Admin"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalRoleName(tt.in))
		})
	}
}

func TestCanonicalRoleName_Idempotent(t *testing.T) {
	for _, in := range []string{"Content Editor", "  super_user  ", "Admin"} {
		once := CanonicalRoleName(in)
		assert.Equal(t, once, CanonicalRoleName(once))
	}
}
