package http

import (
	"net/http"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// Enums lists every enumeration with its display labels for client pickers.
func Enums(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"task_statuses":    domain.TaskStatusOptions(),
		"task_priorities":  domain.TaskPriorityOptions(),
		"project_statuses": domain.ProjectStatusOptions(),
	})
}
