package http

import (
	"github.com/labstack/echo/v4"

	"github.com/voxmill/article2video/internal/jobs"
)

func MapJobRoutes(jobGroup *echo.Group, h jobs.Handler) {
	jobGroup.POST("", h.SubmitJob())
	jobGroup.GET("", h.ListJobs())
	jobGroup.GET("/:job_id", h.GetJob())
	jobGroup.POST("/:job_id/cancel", h.CancelJob())
	jobGroup.GET("/:job_id/video", h.GetPlaybackURL())
}
