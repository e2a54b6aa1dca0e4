package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// RecommendResponse 推荐咨询师响应
type RecommendResponse struct {
	Code    int                  `json:"code" example:"0"`
	Message string               `json:"message" example:"success"`
	Data    RecommendationResult `json:"data"`
}

// RecommendStatusResponse 推荐前置状态响应
type RecommendStatusResponse struct {
	Code    int          `json:"code" example:"0"`
	Message string       `json:"message" example:"success"`
	Data    StatusResult `json:"data"`
}

// AvailableSlotsResponse 可预约时段响应
type AvailableSlotsResponse struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message" example:"success"`
	Data    AvailableSlots `json:"data"`
}
