package server

import (
	"errors"
	"net/http"
	"strings"

	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	discountdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	invoicedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/domain"
	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	paymentlinkdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/domain"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: codeOr(err, "not found"),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: codeOr(err, "conflict"),
		}
	case isBusinessRuleError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "business_rule_violation",
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, invoicedomain.ErrProcessorFailure):
		return http.StatusBadGateway, errorPayload{
			Type:    "payment_processor_error",
			Message: "payment processor request failed",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, invoicedomain.ErrProcessorNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// codeOr exposes domain sentinel codes and hides anything else.
func codeOr(err error, fallback string) string {
	msg := err.Error()
	if strings.ContainsAny(msg, " :") {
		return fallback
	}
	return msg
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCatalogValidationError(err),
		isQuoteValidationError(err),
		isDiscountValidationError(err),
		isLeadValidationError(err),
		isBookingValidationError(err),
		errors.Is(err, paymentlinkdomain.ErrInvalidExpiry):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidRate),
		errors.Is(err, catalogdomain.ErrInvalidRateType),
		errors.Is(err, catalogdomain.ErrInvalidApplicability),
		errors.Is(err, catalogdomain.ErrInvalidServiceKey),
		errors.Is(err, catalogdomain.ErrInvalidPricingMode),
		errors.Is(err, catalogdomain.ErrInvalidTiers),
		errors.Is(err, catalogdomain.ErrTiersMustStartAtZero),
		errors.Is(err, catalogdomain.ErrTiersNotContiguous),
		errors.Is(err, catalogdomain.ErrMissingUnboundedTier),
		errors.Is(err, catalogdomain.ErrInvalidTierRange),
		errors.Is(err, catalogdomain.ErrInvalidDiscountPercent),
		errors.Is(err, catalogdomain.ErrInvalidHours):
		return true
	}
	return false
}

func isQuoteValidationError(err error) bool {
	switch {
	case errors.Is(err, quotedomain.ErrInvalidQuantity),
		errors.Is(err, quotedomain.ErrInvalidHours),
		errors.Is(err, quotedomain.ErrInvalidMarginPercent),
		errors.Is(err, quotedomain.ErrInvalidStatus):
		return true
	}
	return false
}

func isDiscountValidationError(err error) bool {
	switch {
	case errors.Is(err, discountdomain.ErrMalformedCode),
		errors.Is(err, discountdomain.ErrInvalidDiscountType),
		errors.Is(err, discountdomain.ErrInvalidDiscountValue),
		errors.Is(err, discountdomain.ErrInvalidUsageType),
		errors.Is(err, discountdomain.ErrInvalidMaxUses):
		return true
	}
	return false
}

func isLeadValidationError(err error) bool {
	switch {
	case errors.Is(err, leaddomain.ErrInvalidStatus),
		errors.Is(err, leaddomain.ErrInvalidLeadType),
		errors.Is(err, leaddomain.ErrInvalidRep):
		return true
	}
	return false
}

func isBookingValidationError(err error) bool {
	switch {
	case errors.Is(err, bookingdomain.ErrInvalidName),
		errors.Is(err, bookingdomain.ErrInvalidEmail),
		errors.Is(err, bookingdomain.ErrInvalidHours),
		errors.Is(err, bookingdomain.ErrInvalidCrewRoles),
		errors.Is(err, bookingdomain.ErrInvalidCrewMember),
		errors.Is(err, bookingdomain.ErrInvalidCrewRequest),
		errors.Is(err, invoicedomain.ErrMissingEmail):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalogdomain.ErrCategoryNotFound),
		errors.Is(err, catalogdomain.ErrItemNotFound),
		errors.Is(err, quotedomain.ErrNotFound),
		errors.Is(err, discountdomain.ErrCodeNotFound),
		errors.Is(err, leaddomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrRepNotFound),
		errors.Is(err, paymentlinkdomain.ErrBookingNotFound),
		errors.Is(err, paymentlinkdomain.ErrLinkNotFound),
		errors.Is(err, invoicedomain.ErrBookingNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, catalogdomain.ErrDuplicateCategory),
		errors.Is(err, discountdomain.ErrDuplicateCode),
		errors.Is(err, leaddomain.ErrDuplicateRep),
		errors.Is(err, leaddomain.ErrAssignmentBusy),
		errors.Is(err, invoicedomain.ErrGenerationInProgress),
		errors.Is(err, bookingdomain.ErrAlreadyPaid),
		errors.Is(err, paymentlinkdomain.ErrBookingAlreadyPaid),
		errors.Is(err, paymentlinkdomain.ErrLinkAlreadyUsed):
		return true
	default:
		return false
	}
}

// isBusinessRuleError covers well-formed requests the current state refuses.
func isBusinessRuleError(err error) bool {
	switch {
	case errors.Is(err, discountdomain.ErrCodeInactive),
		errors.Is(err, discountdomain.ErrCodeExpired),
		errors.Is(err, discountdomain.ErrUsageExhausted),
		errors.Is(err, discountdomain.ErrScopeMismatch),
		errors.Is(err, discountdomain.ErrCodeSpaceExhausted),
		errors.Is(err, discountdomain.ErrQuoteNotDiscountable),
		errors.Is(err, discountdomain.ErrQuoteAlreadyDiscounted),
		errors.Is(err, leaddomain.ErrRepInactive),
		errors.Is(err, leaddomain.ErrNoActiveReps),
		errors.Is(err, leaddomain.ErrAutoAssignDisabled),
		errors.Is(err, leaddomain.ErrLeadClosed),
		errors.Is(err, invoicedomain.ErrNoActiveQuote),
		errors.Is(err, invoicedomain.ErrInvoiceVoided),
		errors.Is(err, paymentlinkdomain.ErrLinkExpired):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog returns the response type and code for request logs.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	code := payload.Message
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		code = http.StatusText(status)
	}
	return payload.Type, code
}
