package api

import (
	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, svcs *Services) error {
	handler, err := handlers.NewNotificationHandler(svcs.Notifications)
	if err != nil {
		return err
	}

	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/:id/read", handler.MarkRead)
		group.DELETE("/:id", handler.Delete)
	}

	return nil
}
