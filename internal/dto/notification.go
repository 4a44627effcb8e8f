package dto

// NotificationListQuery are the query parameters of GET /core/notification/
type NotificationListQuery struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int  `form:"offset" binding:"omitempty,min=0"`
}

// MarkReadRequest is the body of PATCH /core/notification/
type MarkReadRequest struct {
	IDs []string `json:"ids" binding:"omitempty,dive,uuid"`
	All bool     `json:"all"`
}

// MarkReadResponse reports how many notifications changed
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
