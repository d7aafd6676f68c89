package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves POST /graphql. Results, including resolver errors, are
// returned with status 200 as GraphQL clients expect.
// @Summary GraphQL endpoint
// @Description Executes a GraphQL query or mutation over the entity services
// @Tags graphql
// @Accept json
// @Produce json
// @Param request body Request true "GraphQL request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /graphql [post]
func Handler(schema *Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "request body must be JSON with a non-empty query"}},
			})
			return
		}
		c.JSON(http.StatusOK, schema.Do(c.Request.Context(), req))
	}
}
