package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	jobHttp "github.com/voxmill/article2video/internal/jobs/delivery/http"
	jobRepository "github.com/voxmill/article2video/internal/jobs/repository"
	jobUsecase "github.com/voxmill/article2video/internal/jobs/usecase"
	"github.com/voxmill/article2video/internal/middleware"
	"github.com/voxmill/article2video/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	jRedisRepo := jobRepository.NewJobRedisRepo(s.redisClient)
	jRepo := jobRepository.NewJobRepo(s.db)
	jAWSRepo := jobRepository.NewAwsRepository(s.s3Client, s.preSignClient, s.cfg.S3.OutputBucket)

	jobUC := jobUsecase.NewJobUseCase(s.cfg, jRedisRepo, jRepo, jAWSRepo, s.logger)
	jobHandlers := jobHttp.NewJobHandler(jobUC)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)
	e.Use(mw.RequestLoggerMiddleware)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	jobGroup := v1.Group("/jobs")

	jobHttp.MapJobRoutes(jobGroup, jobHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
