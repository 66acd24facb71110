package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SpyBeast07/lms-system/internal/auth"
	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/health"
	"github.com/SpyBeast07/lms-system/pkg/middleware"
)

// Services bundles everything the router needs.
type Services struct {
	Auth          *service.AuthService
	Signup        *service.SignupService
	Users         *service.UserService
	Schools       *service.SchoolService
	Courses       *service.CourseService
	Materials     *service.MaterialService
	Enrollments   *service.EnrollmentService
	Submissions   *service.SubmissionService
	Files         *service.FileService
	Notifications *service.NotificationService
	Activity      *service.ActivityService
	Stats         *service.StatsService
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	svcs Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("lms"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("lms"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Role:     claims.Role,
			BaseRole: claims.BaseRole,
			SchoolID: claims.SchoolID,
		}, nil
	}

	authed := middleware.Auth(tokenValidator)
	subscribed := RequireSubscription(svcs.Schools, logger)

	superAdmin := middleware.RequireRole(string(domain.RoleSuperAdmin))
	admins := middleware.RequireRole(string(domain.RoleSuperAdmin), string(domain.RolePrincipal))
	staff := middleware.RequireRole(string(domain.RoleSuperAdmin), string(domain.RolePrincipal), string(domain.RoleTeacher))
	principals := middleware.RequireRole(string(domain.RolePrincipal))
	teachers := middleware.RequireRole(string(domain.RoleTeacher))
	students := middleware.RequireRole(string(domain.RoleStudent))

	authHandler := NewAuthHandler(svcs.Auth, logger)
	signupHandler := NewSignupHandler(svcs.Signup, logger)
	userHandler := NewUserHandler(svcs.Users, logger)
	schoolHandler := NewSchoolHandler(svcs.Schools, logger)
	courseHandler := NewCourseHandler(svcs.Courses, logger)
	materialHandler := NewMaterialHandler(svcs.Materials, logger)
	enrollmentHandler := NewEnrollmentHandler(svcs.Enrollments, logger)
	submissionHandler := NewSubmissionHandler(svcs.Submissions, logger)
	fileHandler := NewFileHandler(svcs.Files, logger)
	notificationHandler := NewNotificationHandler(svcs.Notifications, logger)
	activityHandler := NewActivityHandler(svcs.Activity, logger)
	statsHandler := NewStatsHandler(svcs.Stats, logger)

	// Public auth endpoints. Logout takes the refresh token in the body and
	// must work with an expired access token.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Post("/signup", signupHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Post("/logout-all", authHandler.LogoutAll)
			r.Post("/change-password", authHandler.ChangePassword)
			r.Post("/switch-role", authHandler.SwitchRole)

			r.With(staff).Get("/password-requests", authHandler.ListPasswordRequests)
			r.With(staff).Post("/password-requests/{id}", authHandler.ResolvePasswordRequest)

			r.With(staff).Get("/signup-requests", signupHandler.List)
			r.With(staff).Post("/signup-requests/{id}", signupHandler.Resolve)
		})
	})

	r.Route("/api/v1/schools", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed, superAdmin)

		r.Post("/", schoolHandler.Create)
		r.Get("/", schoolHandler.List)
		r.Get("/{id}", schoolHandler.Get)
		r.Put("/{id}", schoolHandler.Update)
		r.Delete("/{id}", schoolHandler.Delete)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.Get("/me", userHandler.Me)
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Put("/{id}", userHandler.Update)

		r.Group(func(r chi.Router) {
			r.Use(admins, subscribed)

			r.Post("/", userHandler.Create)
			r.Delete("/{id}", userHandler.Delete)
			r.Post("/{id}/restore", userHandler.Restore)
		})
	})

	r.Route("/api/v1/courses", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.Get("/", courseHandler.List)
		r.Get("/{id}", courseHandler.Get)
		r.Get("/{id}/teachers", enrollmentHandler.ListTeachers)
		r.Get("/{id}/students", enrollmentHandler.ListStudents)
		r.Get("/{id}/materials", materialHandler.ListByCourse)

		r.Group(func(r chi.Router) {
			r.Use(principals, subscribed)

			r.Post("/", courseHandler.Create)
			r.Post("/{id}/teachers", enrollmentHandler.AssignTeacher)
			r.Delete("/{id}/teachers/{userID}", enrollmentHandler.UnassignTeacher)
			r.Post("/{id}/students", enrollmentHandler.EnrollStudent)
			r.Delete("/{id}/students/{userID}", enrollmentHandler.UnenrollStudent)
		})

		r.Group(func(r chi.Router) {
			r.Use(admins, subscribed)

			r.Put("/{id}", courseHandler.Update)
			r.Delete("/{id}", courseHandler.Delete)
			r.Post("/{id}/restore", courseHandler.Restore)
		})

		r.With(staff, subscribed).Post("/{id}/materials", materialHandler.Create)
	})

	r.Route("/api/v1/materials", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.Get("/{id}", materialHandler.Get)
		r.With(staff, subscribed).Put("/{id}", materialHandler.Rename)
		r.With(staff, subscribed).Delete("/{id}", materialHandler.Delete)
	})

	r.Route("/api/v1/assignments", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.With(students, subscribed).Post("/{id}/upload-url", submissionHandler.RequestUpload)
		r.With(students, subscribed).Post("/{id}/submissions", submissionHandler.Submit)
		r.With(staff).Get("/{id}/submissions", submissionHandler.ListByAssignment)
	})

	r.Route("/api/v1/submissions", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.With(students).Get("/mine", submissionHandler.ListMine)
		r.Get("/{id}", submissionHandler.Get)
		r.With(teachers, subscribed).Post("/{id}/grade", submissionHandler.Grade)
	})

	r.Route("/api/v1/files", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.With(staff, subscribed).Post("/upload-url", fileHandler.UploadURL)
		r.Get("/download-url", fileHandler.DownloadURL)
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(ContentTypeJSON, authed)

		r.Get("/", notificationHandler.List)
		r.Post("/{id}/read", notificationHandler.MarkRead)
		r.Post("/read-all", notificationHandler.MarkAllRead)
	})

	r.Route("/api/v1/activity", func(r chi.Router) {
		r.Use(authed, admins)

		r.Get("/", activityHandler.List)
	})

	r.Route("/api/v1/stats", func(r chi.Router) {
		r.Use(authed, admins)

		r.Get("/", statsHandler.SchoolStats)
	})

	return r
}
