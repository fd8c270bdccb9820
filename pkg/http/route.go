package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/modelbench/client/pkg/dto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoute registers the observability routes: prometheus
// exposition, pprof and a live status view of the running benchmark.
func RegisterRoute(r *gin.Engine, status func() dto.StatusResponse) {
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		MaxAge: 12 * time.Hour,
	}))
	pprof.Register(r)
	v1 := r.Group("/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(200, status())
		})
	}
	r.GET("/metrics", prometheusHandler())
}

func prometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
