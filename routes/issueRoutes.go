package routes

import (
	"civicreport-be/controllers"
	"civicreport-be/middlewares"
	"civicreport-be/models"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController) {
	group := r.Group("/api/issues")
	{
		group.GET("/nearby", issues.NearbyIssues)
		group.GET("/:id", issues.GetIssue)
		group.GET("/:id/updates", issues.GetIssueUpdates)

		group.POST("", middlewares.AuthMiddleware(), middlewares.IssueRateLimiter(10), issues.CreateIssue)
		group.PUT("/:id", middlewares.AuthMiddleware(), issues.UpdateIssue)
		group.POST("/:id/vote", middlewares.AuthMiddleware(), issues.VoteOnIssue)

		group.PUT("/:id/status",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole(models.RoleAdmin, models.RoleStaff),
			issues.UpdateIssueStatus)
		group.PUT("/:id/assign",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole(models.RoleAdmin, models.RoleStaff),
			issues.AssignIssue)
		group.POST("/:id/updates",
			middlewares.AuthMiddleware(),
			middlewares.RequireRole(models.RoleAdmin, models.RoleDepartment, models.RoleStaff),
			issues.AddIssueUpdate)
	}
}
