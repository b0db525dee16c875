package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/markup"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hris-attendance-go/internal/service/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/master"
	newsService "github.com/cmlabs-hris/hris-attendance-go/internal/service/news"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	overtimeService "github.com/cmlabs-hris/hris-attendance-go/internal/service/overtime"
	payrollService "github.com/cmlabs-hris/hris-attendance-go/internal/service/payroll"
	visitService "github.com/cmlabs-hris/hris-attendance-go/internal/service/visit"
	"github.com/go-chi/httplog/v3"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "hris-attendance",
		Usage:  "employee attendance and HR API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the scheduler",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply the database schema",
				Action: migrate,
			},
			{
				Name:  "seed-admin",
				Usage: "create the first HR administrator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "login email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "initial password (min 8 characters)", Required: true},
					&cli.StringFlag{Name: "name", Usage: "full name", Value: "HR Administrator"},
					&cli.StringFlag{Name: "code", Usage: "employee code", Value: "ADM-001"},
				},
				Action: seedAdmin,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
}

func connect(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(newLogger(cfg))

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

func migrate(ctx context.Context, _ *cli.Command) error {
	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		return err
	}
	slog.Info("Schema applied")
	return nil
}

func seedAdmin(ctx context.Context, cmd *cli.Command) error {
	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	employees := employeeService.NewEmployeeService(
		postgresql.NewTxManager(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewUserRepository(db),
		postgresql.NewLocationRepository(db),
	)
	created, err := employees.Create(ctx, employee.CreateEmployeeRequest{
		EmployeeCode:   cmd.String("code"),
		FullName:       cmd.String("name"),
		Email:          cmd.String("email"),
		Password:       cmd.String("password"),
		Role:           "admin",
		BypassLocation: true,
		BaseSalary:     "0",
		HireDate:       time.Now().Format(time.DateOnly),
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("Administrator created", "employee_id", created.ID, "email", created.Email)
	return nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	loc := cfg.Location()
	clk := clock.NewSystem(loc)

	accessTTL, _ := time.ParseDuration(cfg.JWT.AccessExpiration)
	refreshTTL, _ := time.ParseDuration(cfg.JWT.RefreshExpiration)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessTTL, refreshTTL, cfg.App.Env != "development")

	authorizer, err := rbac.NewDefaultEnforcer()
	if err != nil {
		return fmt.Errorf("build authorization policy: %w", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("initialize local storage: %w", err)
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	locationRepo := postgresql.NewLocationRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	visitRepo := postgresql.NewVisitRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	newsRepo := postgresql.NewNewsRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	hub := sse.NewHub()
	notifier := notificationService.NewNotificationService(notificationRepo, hub, clk, notificationService.Config{})
	defer notifier.Stop()

	fileService := file.NewFileService(fileStorage)
	authService := serviceAuth.NewAuthService(txManager, userRepo, JWTService, JWTRepository, authorizer)
	employeeSvc := employeeService.NewEmployeeService(txManager, employeeRepo, userRepo, locationRepo)
	masterSvc := master.NewMasterService(locationRepo, shiftRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		attendanceRepo,
		employeeSvc,
		employeeRepo,
		leaveRepo,
		fileService,
		authorizer,
		clk,
	)
	leaveSvc := leaveService.NewLeaveService(txManager, leaveRepo, employeeRepo, notifier, authorizer, clk)
	overtimeSvc := overtimeService.NewOvertimeService(overtimeRepo, notifier, authorizer, clk)
	visitSvc := visitService.NewVisitService(visitRepo, fileService, notifier, authorizer, clk)
	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollRepo,
		employeeRepo,
		overtimeRepo,
		notifier,
		authorizer,
		clk,
		payroll.Rates{
			MonthlyHours:       cfg.Payroll.MonthlyHours,
			OvertimeMultiplier: cfg.Payroll.Multiplier(),
		},
	)
	newsSvc := newsService.NewNewsService(newsRepo, employeeRepo, markup.NewRenderer(), notifier, authorizer, clk)

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(
			cfg.OAuth2Google.ClientID,
			cfg.OAuth2Google.ClientSecret,
			cfg.OAuth2Google.RedirectURL,
			cfg.OAuth2Google.Scopes,
		)
	} else {
		slog.Info("Google login disabled")
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			CORSOrigins: cfg.App.CORSOrigins,
			LogLevel:    cfg.LogLevel(),
		},
		slog.Default(),
		JWTService,
		authorizer,
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL, cfg.App.Env != "development"),
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
			Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
			Master:       appHTTP.NewMasterHandler(masterSvc),
			Leave:        appHTTP.NewLeaveHandler(leaveSvc),
			Overtime:     appHTTP.NewOvertimeHandler(overtimeSvc),
			Visit:        appHTTP.NewVisitHandler(visitSvc),
			Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
			News:         appHTTP.NewNewsHandler(newsSvc),
			Notification: appHTTP.NewNotificationHandler(notifier, JWTService),
		},
	)

	scheduler := cron.NewScheduler(loc)
	if cfg.Cron.Enabled {
		jobs := cron.NewAttendanceJobs(attendanceSvc, clk)
		if err := jobs.RegisterJobs(scheduler, cfg.Cron.MarkAbsentSchedule); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
