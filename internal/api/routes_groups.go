package api

import (
	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/handlers"
	"github.com/silverlynx18/sock/internal/middleware"
	"github.com/silverlynx18/sock/internal/permissions"
)

func registerGroupRoutes(api *gin.RouterGroup, svcs *Services, checker *permissions.Checker) error {
	handler, err := handlers.NewGroupHandler(svcs.Groups)
	if err != nil {
		return err
	}

	groups := api.Group("/groups")
	{
		groups.POST("", handler.Create)
		groups.GET("", handler.List)
		groups.GET("/:groupID", handler.Get)
		groups.PATCH("/:groupID", middleware.RequireGroupCapability(checker, "group.manage"), handler.Update)
		groups.DELETE("/:groupID", middleware.RequireGroupCapability(checker, "group.delete"), handler.Delete)

		groups.GET("/:groupID/members", handler.ListMembers)
		groups.DELETE("/:groupID/members/:userID", handler.RemoveMember)
		groups.POST("/:groupID/leave", handler.Leave)
		groups.PUT("/:groupID/members/:userID/role", handler.ChangeRole)
	}

	return nil
}
