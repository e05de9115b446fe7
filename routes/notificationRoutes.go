package routes

import (
	"civicreport-be/controllers"
	"civicreport-be/middlewares"

	"github.com/gin-gonic/gin"
)

// NotificationRoutes sets up the notification inbox routes
func NotificationRoutes(r *gin.Engine, notifications *controllers.NotificationController) {
	group := r.Group("/api/notifications", middlewares.AuthMiddleware())
	{
		group.GET("", notifications.GetNotifications)
		group.GET("/unread-count", notifications.GetUnreadCount)
		group.PUT("/:id/read", notifications.MarkNotificationRead)
	}
}
