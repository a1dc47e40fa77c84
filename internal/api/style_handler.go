package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/style"
)

// ListStyles 返回可选的模板与主题色。
func ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, style.NewCatalog())
}
