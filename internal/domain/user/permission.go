package user

type Permission string

const (
	// Attendance
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceExport  Permission = "attendance.export"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Overtime
	PermissionOvertimeCreate  Permission = "overtime.create"
	PermissionOvertimeViewAll Permission = "overtime.view_all"
	PermissionOvertimeApprove Permission = "overtime.approve"

	// Visit reports
	PermissionVisitCreate  Permission = "visit.create"
	PermissionVisitViewAll Permission = "visit.view_all"
	PermissionVisitApprove Permission = "visit.approve"

	// Administration
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"
	PermissionMasterManage    Permission = "master.manage"

	// Payroll
	PermissionPayrollViewOwn Permission = "payroll.view_own"
	PermissionPayrollManage  Permission = "payroll.manage"

	// News
	PermissionNewsView   Permission = "news.view"
	PermissionNewsManage Permission = "news.manage"

	// Notifications
	PermissionNotificationViewOwn Permission = "notification.view_own"
)

var selfService = []Permission{
	PermissionAttendanceCreate,
	PermissionAttendanceViewOwn,
	PermissionLeaveCreate,
	PermissionOvertimeCreate,
	PermissionVisitCreate,
	PermissionPayrollViewOwn,
	PermissionNewsView,
	PermissionNotificationViewOwn,
}

var approver = []Permission{
	PermissionAttendanceViewAll,
	PermissionAttendanceExport,
	PermissionLeaveViewAll,
	PermissionLeaveApprove,
	PermissionOvertimeViewAll,
	PermissionOvertimeApprove,
	PermissionVisitViewAll,
	PermissionVisitApprove,
	PermissionEmployeeViewAll,
}

var administration = []Permission{
	PermissionEmployeeManage,
	PermissionMasterManage,
	PermissionPayrollManage,
	PermissionNewsManage,
}

// RolePermissions is the authorization policy table. Every route guard and
// every service-level role check is evaluated against it.
var RolePermissions = map[Role][]Permission{
	RoleAdmin:    concat(selfService, approver, administration),
	RoleManager:  concat(selfService, approver),
	RoleEmployee: concat(selfService),
}

func concat(groups ...[]Permission) []Permission {
	var out []Permission
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
