package model

// Role is the platform role carried in the session credential.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// taskRoles is the set of roles entitled to the personal task board.
var taskRoles = map[Role]bool{
	RoleStudent: true,
	RoleTeacher: true,
}

// CanUseTasks reports whether r is entitled to the task board.
func (r Role) CanUseTasks() bool {
	return taskRoles[r]
}

// Principal is the locally cached profile of the authenticated user.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
