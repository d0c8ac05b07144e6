package api

import (
	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/handlers"
	"github.com/silverlynx18/sock/internal/middleware"
	"github.com/silverlynx18/sock/internal/permissions"
)

func registerInviteRoutes(api *gin.RouterGroup, svcs *Services, checker *permissions.Checker) error {
	handler, err := handlers.NewInviteHandler(svcs.Invites)
	if err != nil {
		return err
	}

	// Group-scoped invitation management. Creation authorization also runs
	// inside the service so the role-to-assign rule is enforced.
	api.POST("/groups/:groupID/invites", middleware.RequireGroupCapability(checker, "invite.create"), handler.Create)
	api.GET("/groups/:groupID/invites", middleware.RequireGroupCapability(checker, "invite.create"), handler.ListForGroup)

	invites := api.Group("/invites")
	{
		invites.GET("", handler.ListMine)
		invites.POST("/accept", handler.AcceptByToken)
		invites.POST("/:inviteID/accept", handler.Accept)
		invites.POST("/:inviteID/decline", handler.Decline)
		invites.POST("/:inviteID/revoke", handler.Revoke)
		invites.POST("/:inviteID/resolve", handler.Resolve)
	}

	return nil
}
