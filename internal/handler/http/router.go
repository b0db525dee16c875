package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Employee     EmployeeHandler
	Master       MasterHandler
	Leave        LeaveHandler
	Overtime     OvertimeHandler
	Visit        VisitHandler
	Payroll      PayrollHandler
	News         NewsHandler
	Notification NotificationHandler
}

type RouterOptions struct {
	CORSOrigins []string
	LogLevel    slog.Level
}

func NewRouter(opts RouterOptions, logger *slog.Logger, jwtService jwt.Service, authorizer rbac.Authorizer, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	can := func(p user.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(authorizer, p)
	}
	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
		r.Use(middleware.AuthRequired)
	}

	// Attendance wire contract consumed by the existing UI.
	r.Group(func(r chi.Router) {
		authenticated(r)
		r.With(can(user.PermissionAttendanceCreate)).Post("/attendance", h.Attendance.Submit)
		r.With(can(user.PermissionAttendanceViewOwn)).Get("/attendance", h.Attendance.ListRecords)
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/me", h.Auth.Me)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		// EventSource cannot send headers; the stream authenticates with a query token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Route("/attendance", func(r chi.Router) {
				r.With(can(user.PermissionAttendanceCreate)).Post("/", h.Attendance.Submit)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceViewOwn))
					r.Get("/", h.Attendance.List)
					r.Get("/today", h.Attendance.Today)
				})
				r.With(can(user.PermissionAttendanceExport)).Get("/export", h.Attendance.Export)
				r.With(can(user.PermissionAttendanceViewOwn)).Get("/{id}", h.Attendance.Get)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", h.Employee.GetMine)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionEmployeeViewAll))
					r.Get("/", h.Employee.List)
					r.Get("/{id}", h.Employee.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.Create)
					r.Put("/{id}", h.Employee.Update)
					r.Put("/{id}/locations", h.Employee.AssignLocations)
					r.Put("/{id}/bypass", h.Employee.SetBypass)
					r.Delete("/{id}", h.Employee.Deactivate)
				})
			})

			r.Route("/master", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAnyPermission(authorizer, user.PermissionEmployeeViewAll, user.PermissionMasterManage))
					r.Get("/locations", h.Master.ListLocations)
					r.Get("/locations/{id}", h.Master.GetLocation)
					r.Get("/shifts", h.Master.ListShifts)
					r.Get("/shifts/{id}", h.Master.GetShift)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionMasterManage))
					r.Post("/locations", h.Master.CreateLocation)
					r.Put("/locations/{id}", h.Master.UpdateLocation)
					r.Delete("/locations/{id}", h.Master.DeleteLocation)
					r.Post("/shifts", h.Master.CreateShift)
					r.Put("/shifts/{id}", h.Master.UpdateShift)
					r.Delete("/shifts/{id}", h.Master.DeleteShift)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.With(can(user.PermissionLeaveCreate)).Post("/", h.Leave.Create)
				r.Get("/my", h.Leave.ListMine)
				r.With(can(user.PermissionLeaveViewAll)).Get("/", h.Leave.List)
				r.Get("/{id}", h.Leave.Get)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionLeaveApprove))
					r.Post("/{id}/approve", h.Leave.Approve)
					r.Post("/{id}/reject", h.Leave.Reject)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.With(can(user.PermissionOvertimeCreate)).Post("/", h.Overtime.Create)
				r.Get("/my", h.Overtime.ListMine)
				r.With(can(user.PermissionOvertimeViewAll)).Get("/", h.Overtime.List)
				r.Get("/{id}", h.Overtime.Get)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionOvertimeApprove))
					r.Post("/{id}/approve", h.Overtime.Approve)
					r.Post("/{id}/reject", h.Overtime.Reject)
				})
			})

			r.Route("/visits", func(r chi.Router) {
				r.With(can(user.PermissionVisitCreate)).Post("/", h.Visit.Create)
				r.Get("/my", h.Visit.ListMine)
				r.With(can(user.PermissionVisitViewAll)).Get("/", h.Visit.List)
				r.Get("/{id}", h.Visit.Get)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionVisitApprove))
					r.Post("/{id}/approve", h.Visit.Approve)
					r.Post("/{id}/reject", h.Visit.Reject)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/employees/{employeeID}/components", func(r chi.Router) {
					r.Use(can(user.PermissionPayrollManage))
					r.Get("/", h.Payroll.ListComponents)
					r.Post("/", h.Payroll.AddComponent)
					r.Delete("/{id}", h.Payroll.DeleteComponent)
				})
				r.Route("/slips", func(r chi.Router) {
					r.With(can(user.PermissionPayrollViewOwn)).Get("/my", h.Payroll.ListMine)
					r.Get("/{id}", h.Payroll.Get)
					r.Get("/{id}/pdf", h.Payroll.DownloadPDF)
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionPayrollManage))
						r.Get("/", h.Payroll.List)
						r.Post("/generate", h.Payroll.Generate)
						r.Post("/{id}/publish", h.Payroll.Publish)
					})
				})
			})

			r.Route("/news", func(r chi.Router) {
				r.With(can(user.PermissionNewsView)).Get("/", h.News.List)
				r.With(can(user.PermissionNewsView)).Get("/{id}", h.News.Get)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionNewsManage))
					r.Post("/", h.News.Create)
					r.Put("/{id}", h.News.Update)
					r.Delete("/{id}", h.News.Delete)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Use(can(user.PermissionNotificationViewOwn))
				r.Get("/", h.Notification.List)
				r.Get("/sse-token", h.Notification.GetSSEToken)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Post("/{id}/read", h.Notification.MarkAsRead)
			})
		})
	})
	return r
}
