package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/httpaccess/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// InfoResponse is the body of the info endpoint.
type InfoResponse struct {
	Service string       `json:"service"`
	Build   version.Info `json:"build"`
	Uptime  string       `json:"uptime"`
}

// Info reports build information and uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service: serviceName,
			Build:   version.Get(),
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		})
	}
}
