package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avarouter/internal/health"
)

// Admin endpoint paths.
const (
	PathHealth    = "/healthz"
	PathReadiness = "/readyz"
	PathLiveness  = "/livez"
)

// NewEngine returns a gin engine that hands every request to d. Gin only
// contributes panic recovery; routing is entirely the dispatcher's.
func NewEngine(d *Dispatcher) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = false
	engine.NoRoute(gin.WrapH(d))
	return engine
}

// NewAdminEngine returns a gin engine serving the metrics handler at
// metricsPath and the health endpoints of checker. A nil metrics handler
// or checker leaves the corresponding endpoints out.
func NewAdminEngine(metricsPath string, metrics http.Handler, checker *health.Checker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	if metrics != nil {
		engine.GET(metricsPath, gin.WrapH(metrics))
	}
	if checker != nil {
		engine.GET(PathHealth, gin.WrapF(checker.HealthHandler()))
		engine.GET(PathReadiness, gin.WrapF(checker.ReadinessHandler()))
		engine.GET(PathLiveness, gin.WrapF(checker.LivenessHandler()))
	}
	return engine
}
