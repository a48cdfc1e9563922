package transfer

type UpdateRoleRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=admin moderator user"`
}

type BulkStatusRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,dive,required"`
	Status  string  `json:"status" validate:"required,oneof=active inactive suspended"`
}

type UpdatePlanRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Plan   string `json:"plan" validate:"required,oneof=free basic premium"`
}
