package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/news"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/visit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, "Account is inactive")
	case errors.Is(err, auth.ErrOAuthDisabled):
		NotFound(w, "OAuth login is not configured")
	case errors.Is(err, auth.ErrOAuthEmailNotLinked):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrLocationRequired):
		Error(w, http.StatusBadRequest, "LOCATION_REQUIRED", err.Error())
	case errors.Is(err, attendance.ErrOutsideGeofence):
		Error(w, http.StatusForbidden, "OUTSIDE_GEOFENCE", err.Error())
	case errors.Is(err, attendance.ErrNoLocationConfigured):
		Error(w, http.StatusForbidden, "NO_LOCATION_CONFIGURED", err.Error())
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		Error(w, http.StatusConflict, "ALREADY_COMPLETED", err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrForbiddenEmployee):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists), errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, "Employee is already inactive")
	case errors.Is(err, employee.ErrCannotDeactivateSelf):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrUnknownLocation):
		BadRequest(w, err.Error(), nil)

	// Master data errors
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, "Location not found")
	case errors.Is(err, location.ErrLocationNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, location.ErrLocationInUse):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Work shift not found")
	case errors.Is(err, shift.ErrShiftNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, shift.ErrShiftInvalid):
		BadRequest(w, err.Error(), nil)

	// Approval workflow errors
	case errors.Is(err, approval.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, approval.ErrSelfDecision):
		Forbidden(w, err.Error())
	case errors.Is(err, approval.ErrAlreadyProcessed):
		Conflict(w, "Request already processed")
	case errors.Is(err, approval.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, approval.ErrRejectionReason):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInsufficientQuota):
		BadRequest(w, "Insufficient leave quota", nil)
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, err.Error())
	case errors.Is(err, overtime.ErrOvertimeNotFound):
		NotFound(w, "Overtime request not found")
	case errors.Is(err, overtime.ErrInvalidDuration):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, overtime.ErrDuplicateDate):
		Conflict(w, err.Error())
	case errors.Is(err, visit.ErrVisitNotFound):
		NotFound(w, "Visit report not found")

	// Payroll, news and notifications
	case errors.Is(err, payroll.ErrSlipNotFound):
		NotFound(w, "Payroll slip not found")
	case errors.Is(err, payroll.ErrSlipAlreadyPublished):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrComponentNotFound):
		NotFound(w, "Payroll component not found")
	case errors.Is(err, news.ErrPostNotFound):
		NotFound(w, "News post not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
