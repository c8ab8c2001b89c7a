package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lamahang-storefront/internal/domain"
)

// Responses use the {"data": ...} / {"message": ...} envelope the storefront
// backend client expects.

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msg})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		verr    *domain.ValidationError
		vcherr  *domain.VoucherError
		suberr  *domain.CheckoutSubmissionError
		syncerr *domain.SyncError
	)
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": verr.Error(), "field": verr.Field})
	case errors.As(err, &vcherr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": vcherr.Error(), "reason": vcherr.Reason.String()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrCheckoutInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.As(err, &suberr), errors.As(err, &syncerr):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"message": err.Error()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid product id")
		return 0, false
	}
	return id, true
}
