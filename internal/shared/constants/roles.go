package constants

// Roles carried in the "role" claim of access tokens
const (
	RoleUser  = "USER"
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

// Context keys set by the auth middleware
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxUserName  = "user_name"
	CtxUserRole  = "user_role"
	CtxRequestID = "request_id"
)
