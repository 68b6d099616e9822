package models

import "time"

// Member roles.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// DemoGroupName is the name of the auto-provisioned demo group.
const DemoGroupName = "demo"

// Group is a set of users planning meetups together.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Members []*GroupMember `db:"-" json:"members,omitempty"`
}

// GroupMember links a user to a group with a role.
type GroupMember struct {
	ID        string    `db:"id" json:"id"`
	GroupID   string    `db:"group_id" json:"groupId"`
	UserID    string    `db:"user_id" json:"userId"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	User *User `db:"-" json:"user,omitempty"`
}

// IsLeader reports whether the member may change the group's AI preferences.
func (m *GroupMember) IsLeader() bool {
	return m != nil && m.Role == RoleLeader
}

// CreateGroupInput is the body of POST /groups.
type CreateGroupInput struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberInput is the body of POST /groups/:groupId/members.
type AddMemberInput struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=leader member"`
}
