package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/katatrina/chatpush-BE/internal/util"
	"github.com/katatrina/chatpush-BE/internal/worker"
)

type Server struct {
	router        *gin.Engine
	dbStore       db.Store
	config        *util.Config
	taskInspector worker.TaskInspector
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(store db.Store, taskInspector worker.TaskInspector, config *util.Config) (*Server, error) {
	server := &Server{
		dbStore:       store,
		config:        config,
		taskInspector: taskInspector,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() {
	gin.ForceConsoleColor()
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", server.checkHealth)

	v1 := router.Group("/v1")
	v1.PUT("/users/:id/fcm-token", server.updateUserFCMToken)

	server.router = router
}

// checkHealth reports liveness plus the depth of each task queue.
func (server *Server) checkHealth(ctx *gin.Context) {
	queues, err := server.taskInspector.ListQueues(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	queueSizes := make(map[string]int, len(queues))
	for _, queue := range queues {
		info, err := server.taskInspector.GetQueueInfo(ctx, queue)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, errorResponse(err))
			return
		}
		queueSizes[queue] = info.Size
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"queues": queueSizes,
	})
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}
