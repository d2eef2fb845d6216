package permission

import (
	"strconv"

	"warden/internal/shared/constants"
)

// Member is a user assigned to at most one role.
type Member struct {
	ID        uint
	FirstName string
	LastName  string
	Email     string
	RoleID    *uint
}

func (m *Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// MemberSubject is the policy subject a member is enforced as.
func MemberSubject(memberID uint) string {
	return constants.CasbinMemberPrefix + strconv.FormatUint(uint64(memberID), 10)
}
