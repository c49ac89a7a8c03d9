package utils

import "github.com/gin-gonic/gin"

type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// SuccessResponse writes the standard envelope for a successful call
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{StatusCode: statusCode, Message: message, Data: data})
}

// ErrorResponse writes the standard envelope for a failed call and stops the chain
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{StatusCode: statusCode, Message: message, Data: nil})
}
