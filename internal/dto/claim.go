package dto

// ClaimRequest 批量认领号码请求
type ClaimRequest struct {
	Token   string   `json:"token" binding:"required"`
	Numbers []string `json:"numbers" binding:"required"`
}

// ClaimSingleRequest 单号认领请求（数字形式，服务端补零）
type ClaimSingleRequest struct {
	Token  string `json:"token" binding:"required"`
	Number *int   `json:"number" binding:"required"`
}

// ClaimResponse 认领成功响应
type ClaimResponse struct {
	Numbers     []string `json:"numbers"`
	Remaining   int      `json:"remaining"`
	Deactivated bool     `json:"deactivated"`
}
