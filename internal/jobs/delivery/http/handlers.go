package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/voxmill/article2video/internal/jobs"
	"github.com/voxmill/article2video/internal/models"
)

type jobHandler struct {
	jobUC jobs.UseCase
}

func NewJobHandler(jobUC jobs.UseCase) jobs.Handler {
	return &jobHandler{jobUC: jobUC}
}

func (h *jobHandler) SubmitJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.JobSubmitInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		job, err := h.jobUC.SubmitJob(c.Request().Context(), input)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusAccepted, job)
	}
}

func (h *jobHandler) GetJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		if jobID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.jobUC.GetJob(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *jobHandler) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		list, err := h.jobUC.ListJobs(c.Request().Context(), limit)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *jobHandler) CancelJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		if jobID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		if err := h.jobUC.CancelJob(c.Request().Context(), jobID); err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			if errors.Is(err, jobs.ErrJobTerminal) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "Job already finished"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Cancellation requested"})
	}
}

func (h *jobHandler) GetPlaybackURL() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		if jobID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		url, err := h.jobUC.GetPlaybackURL(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"playbackUrl": url})
	}
}
