package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.Config.AccessControlAllowOrigin) > 0 {
		corsConfig.AllowOrigins = s.Config.AccessControlAllowOrigin
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	r.Use(cors.New(corsConfig))
	r.MaxMultipartMemory = 8 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Backend running"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if s.Gateway != nil {
		router.GET("/ws", gin.WrapH(s.Gateway))
	}

	limitSubmissions := s.limitSubmissions()

	messages := router.Group("/api/messages")
	messages.POST("", s.OptionalAuthorize(), limitSubmissions, s.handleSubmitMessage())
	messages.GET("", s.Authorize(), s.handleListMessages())
	messages.GET("/conversations", s.Authorize(), s.handleListConversations())
	messages.POST("/conversations/:conversationId", s.Authorize(), limitSubmissions, s.handleAppendMessage())
	messages.DELETE("/:id", s.Authorize(), s.handleDeleteMessage())
	messages.PATCH("/:id/reply", s.Authorize(), s.handleReplyMessage())
	messages.PATCH("/:id/status", s.Authorize(), s.RequirePrivileged(), s.handleMessageStatus())

	doctors := router.Group("/api/doctors")
	doctors.GET("", s.handleListDoctors())
	doctors.POST("", s.Authorize(), s.handleCreateDoctor())

	appointments := router.Group("/api/appointments")
	appointments.GET("", s.handleListAppointments())
	appointments.POST("", s.OptionalAuthorize(), limitSubmissions, s.handleCreateAppointment())
	appointments.PATCH("/:id/status", s.Authorize(), s.handleAppointmentStatus())
}
