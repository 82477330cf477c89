package api

import (
	"fmt"
	"net/http"
	"stockcheck/internal/logger"
	"stockcheck/internal/metrics"
	l3_service "stockcheck/internal/service/l3"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

type ApiHandler struct {
	ValuationService l3_service.ValuationService
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	// keep numeric holding fields exact instead of decoding to float64
	binding.EnableDecoderUseNumber = true

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to stockcheck"})
	})
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"status": "ok"})
	})
	router.POST("/valuation", m.postValuation)
	router.GET("/valuation", m.getValuation)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, http.StatusInternalServerError)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Error(err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// logRequestMiddleware puts a request-scoped logger on the request
// context and logs every request once it completes
func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	start := time.Now().UTC()
	log := logger.FromContext(ctx.Request.Context()).With(
		"requestId", uuid.New().String(),
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
	)
	ctx.Request = ctx.Request.WithContext(logger.NewContext(ctx.Request.Context(), log))

	ctx.Next()

	log.Infow(
		"request complete",
		"status", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"ip", ctx.ClientIP(),
	)
}
