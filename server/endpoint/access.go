package endpoint

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/httpaccess/errors"
	"github.com/kbukum/httpaccess/httpaccess"
)

// ServiceProvider returns the running httpaccess Service, or nil while it
// is not started.
type ServiceProvider func() *httpaccess.Service

// StatusResponse describes the running Service.
type StatusResponse struct {
	Settings string                      `json:"settings"`
	Registry httpaccess.RegistrySnapshot `json:"registry"`
}

// ValidateResponse is the classification of one status code.
type ValidateResponse struct {
	Status int  `json:"status"`
	Valid  bool `json:"valid"`
}

// BypassResponse reports how a host would be reached.
type BypassResponse struct {
	Host     string `json:"host"`
	Bypassed bool   `json:"bypassed"`
	Slot     string `json:"slot"`
	Proxy    string `json:"proxy,omitempty"`
}

func service(c *gin.Context, provider ServiceProvider) *httpaccess.Service {
	var svc *httpaccess.Service
	if provider != nil {
		svc = provider()
	}
	if svc == nil {
		RespondWithError(c, errors.ServiceUnavailable("httpaccess"))
	}
	return svc
}

// Status reports the settings summary and the client registry snapshot.
func Status(provider ServiceProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := service(c, provider)
		if svc == nil {
			return
		}
		RespondOK(c, StatusResponse{
			Settings: svc.Settings().Summary(),
			Registry: svc.Registry().Snapshot(),
		})
	}
}

// Validate classifies the status code in the :code path parameter.
func Validate(provider ServiceProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := strconv.Atoi(c.Param("code"))
		if err != nil {
			RespondWithError(c, errors.InvalidInput("code", "status code must be an integer"))
			return
		}
		svc := service(c, provider)
		if svc == nil {
			return
		}
		RespondOK(c, ValidateResponse{Status: code, Valid: svc.Validate(code)})
	}
}

// Bypass reports whether the :host path parameter skips the proxy.
func Bypass(provider ServiceProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := service(c, provider)
		if svc == nil {
			return
		}
		host := c.Param("host")
		settings := svc.Settings()

		resp := BypassResponse{Host: host, Slot: httpaccess.SlotProxied.String()}
		if settings.ProxyHost != "" && httpaccess.IsBypassed(settings.NoProxyFor, host) {
			resp.Bypassed = true
			resp.Slot = httpaccess.SlotDirect.String()
		}
		if !resp.Bypassed {
			resp.Proxy = settings.ProxyAddress()
		}
		RespondOK(c, resp)
	}
}
