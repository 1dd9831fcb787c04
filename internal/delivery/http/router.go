package http

import (
	"time"

	"github.com/HeChing/Capacitapp/internal/delivery/http/controllers"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service"
	"github.com/HeChing/Capacitapp/internal/service/access"
	"github.com/HeChing/Capacitapp/internal/storage/postgres"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Repos struct {
	Enrollments *postgres.EnrollmentPostgres
	Courses     *postgres.CoursePostgres
}

func InitRoutes(l logger.Log, u service.Collection, gate *access.Gate, repos Repos) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	authProvider := controllers.NewAuthProvider(l, u.AuthService, u.Resolver)

	statusController := controllers.NewStatusHandler()
	authController := controllers.NewAuthHandler(l, u.AuthService)
	userController := controllers.NewUserHandler(l, u.Resolver)
	courseController := controllers.NewCourseHandler(l, u.CourseManagement, u.Catalog)
	enrollmentController := controllers.NewEnrollmentHandler(l, u.EnrollmentService)
	progressController := controllers.NewProgressHandler(l, u.ProgressTracker, repos.Enrollments, repos.Courses)
	quizController := controllers.NewQuizHandler(l, u.AssessmentEngine)
	reportsController := controllers.NewReportsHandler(l, u.Reports)

	v1 := r.Group("/v1", controllers.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", authProvider.AuthMiddleware, authController.Me)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/refresh", authController.Refresh)
		}

		users := v1.Group("/users", authProvider.AuthMiddleware)
		{
			users.GET("", controllers.RequireAnyPermission(gate, models.PermUsersView), userController.List)
			users.PATCH("/:user_id/role", controllers.RequireAnyPermission(gate, models.PermUsersChangeRole), userController.ChangeRole)
			users.PATCH("/:user_id/active", controllers.RequireAnyPermission(gate, models.PermUsersEdit), userController.SetActive)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", courseController.List)

			viewer := courses.Group("", authProvider.AuthMiddleware)
			{
				viewer.GET("/:course_id", courseController.Detail)

				learner := viewer.Group("", controllers.RequireAnyPermission(gate, models.PermLearningAccess))
				{
					learner.POST("/:course_id/enroll", enrollmentController.Enroll)
					learner.DELETE("/:course_id/enroll", enrollmentController.Unenroll)
					learner.GET("/:course_id/enrollment", enrollmentController.Get)
				}

				viewer.GET("/:course_id/roster",
					controllers.RequireAnyPermission(gate, models.PermEnrollmentsView),
					enrollmentController.Roster)
				viewer.GET("/:course_id/report",
					controllers.RequireAnyPermission(gate, models.PermReportsViewAll, models.PermReportsViewTeam, models.PermReportsViewOwn),
					reportsController.ForCourse)
			}

			author := courses.Group("", authProvider.AuthMiddleware,
				controllers.RequireRoles(gate, models.RoleInstructor, models.RoleAdmin, models.RoleSuperAdmin))
			{
				author.POST("", courseController.Create)
				author.GET("/my-courses", courseController.MyCourses)
				author.PUT("/:course_id", courseController.Update)
				author.PATCH("/:course_id/publish", courseController.Publish)
				author.PATCH("/:course_id/unpublish", courseController.Unpublish)
				author.PUT("/:course_id/cover", courseController.UploadCover)
				author.PUT("/:course_id/modules/:module_index/lessons/:lesson_index/media", courseController.UploadLessonMedia)
			}
		}

		enrollments := v1.Group("/enrollments", authProvider.AuthMiddleware)
		{
			enrollments.GET("", enrollmentController.List)

			learning := enrollments.Group("", controllers.RequireAnyPermission(gate, models.PermLearningAccess))
			{
				learning.POST("/:enrollment_id/lessons/complete", progressController.MarkComplete)
				learning.GET("/:enrollment_id/modules/:module_index/progress", progressController.ModuleProgress)

				quiz := learning.Group("/:enrollment_id/modules/:module_index/lessons/:lesson_index/quiz")
				{
					quiz.POST("/start", quizController.Start)
					quiz.POST("/answer", quizController.SelectAnswer)
					quiz.POST("/submit", quizController.Submit)
					quiz.POST("/restart", quizController.Restart)
					quiz.GET("/result", quizController.Result)
					quiz.DELETE("", quizController.Abandon)
				}
			}
		}

		reports := v1.Group("/reports", authProvider.AuthMiddleware)
		{
			reports.GET("/overview",
				controllers.RequireAnyPermission(gate, models.PermReportsViewAll, models.PermReportsViewTeam),
				reportsController.Overview)
		}
	}
	return r
}
