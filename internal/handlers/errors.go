package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/workflow"
)

// respondDomainError maps permission and workflow failures onto HTTP
// statuses. Anything unrecognized is a 500 with a generic body.
func respondDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, permissions.ErrProjectNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, permissions.ErrNotProjectMember),
		errors.Is(err, permissions.ErrRoleDenied),
		errors.Is(err, workflow.ErrCreateDenied),
		errors.Is(err, workflow.ErrEditDenied),
		errors.Is(err, workflow.ErrDeleteDenied),
		errors.Is(err, workflow.ErrFactorDenied),
		errors.Is(err, workflow.ErrApprovedLocked):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logger.Log.Errorf("Unhandled error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
	}
}
