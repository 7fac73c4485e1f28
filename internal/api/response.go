package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/mister-white/internal/errors"
)

// SuccessResponse 无数据的成功响应
type SuccessResponse struct {
	Success   bool  `json:"success"`
	Timestamp int64 `json:"timestamp"`
}

// respondOK 返回成功响应
func respondOK(c *gin.Context, data interface{}) {
	if data == nil {
		c.JSON(http.StatusOK, SuccessResponse{
			Success:   true,
			Timestamp: time.Now().Unix(),
		})
		return
	}
	c.JSON(http.StatusOK, data)
}

// respondError 按错误码映射HTTP状态返回错误响应。
// 调用栈只进日志，不随响应外泄
func respondError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrUnknown)
	}

	body := *appErr
	body.Stack = nil

	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(&body, c.GetHeader("X-Request-ID")))
}

// respondBadRequest 请求体解析失败的统一响应
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, errors.Wrap(err, errors.ErrInvalidParam))
}
