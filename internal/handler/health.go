package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping is the health check endpoint.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Root answers the bare domain so load balancer probes get a 200.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "runcoach API server is running",
	})
}
