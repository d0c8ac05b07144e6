package api

import (
	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/handlers"
)

func registerStatusRoutes(api *gin.RouterGroup, svcs *Services) error {
	handler, err := handlers.NewStatusHandler(svcs.Statuses)
	if err != nil {
		return err
	}

	statuses := api.Group("/statuses")
	{
		statuses.GET("/presets/app", handler.AppPresets)
		statuses.PUT("/me", handler.SetGlobal)
		statuses.DELETE("/me", handler.ClearGlobal)

		statuses.POST("/presets", handler.CreatePreset)
		statuses.GET("/presets", handler.ListPresets)
		statuses.PATCH("/presets/:presetID", handler.UpdatePreset)
		statuses.DELETE("/presets/:presetID", handler.DeletePreset)
	}

	// Group-scoped status endpoints. Membership checks run in the service.
	api.PUT("/groups/:groupID/statuses/me", handler.SetForGroup)
	api.DELETE("/groups/:groupID/statuses/me", handler.ClearForGroup)
	api.GET("/groups/:groupID/statuses", handler.GroupStatuses)
	api.GET("/groups/:groupID/statuses/:userID", handler.MemberStatus)

	return nil
}
