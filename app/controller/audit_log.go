package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-wellness/app/dto/http"
	"github.com/vibast-solutions/ms-go-wellness/app/service"
	"github.com/vibast-solutions/ms-go-wellness/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuditLogController struct {
	auditLogService service.AuditLogService
}

func NewAuditLogController(auditLogService service.AuditLogService) *AuditLogController {
	return &AuditLogController{auditLogService: auditLogService}
}

// List answers 400 for every failure, query errors included.
func (c *AuditLogController) List(ctx echo.Context) error {
	req, err := types.NewListAuditLogsRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind audit log query")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: "Invalid query parameters."})
	}

	logs, err := c.auditLogService.List(ctx.Request().Context(), req)
	if err != nil {
		var invalid *service.InvalidInputError
		if errors.As(err, &invalid) {
			logrus.WithError(err).Debug("Audit log query validation failed")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: msgInvalidInput, Errors: invalid.Fields})
		}
		logrus.WithError(err).Error("Failed to list audit logs")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Message: "Could not load audit logs."})
	}

	return ctx.JSON(http.StatusOK, logs)
}
