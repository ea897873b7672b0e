package api

import (
	"github.com/Reics/MAGI-01/internal/api/middleware"
	"github.com/Reics/MAGI-01/internal/models"
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/agents").
			To(handler.Agents).
			Doc("List the configured agent roster").
			Metadata(restfulspec.KeyOpenAPITags, []string{"debate"}).
			Writes([]models.AgentSpec{}).
			Returns(200, "OK", []models.AgentSpec{}))

	ws.
		Route(ws.POST("/debate").
			To(handler.Debate).
			Doc("Run a two-round debate over a directive").
			Metadata(restfulspec.KeyOpenAPITags, []string{"debate"}).
			Reads(DebateRequest{}).
			Writes(models.DebateSession{}).
			Returns(200, "OK", models.DebateSession{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(503, "Quorum Failed", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
