package routes

import (
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Profile routes
	profileController := controllers.NewProfileController(db, cfg)
	app.Get("/api/profile", authMiddleware, profileController.GetProfile)
	app.Put("/api/profile", authMiddleware, profileController.UpdateProfile)

	// Course catalog routes
	coursesController := controllers.NewCoursesController(db, cfg)
	app.Get("/api/categories", coursesController.GetCategories)
	app.Get("/api/categories/:slug/courses", coursesController.GetCoursesByCategory)
	app.Get("/api/courses/:slug", authMiddleware, coursesController.GetCourseDetails)
	app.Get("/api/courses/:slug/lessons/:lessonSlug", authMiddleware, coursesController.GetLesson)

	// Enrollment and progress routes
	enrollmentController := controllers.NewEnrollmentController(db, cfg)
	app.Post("/api/courses/:id/enroll", authMiddleware, enrollmentController.Enroll)
	app.Delete("/api/courses/:id/enroll", authMiddleware, enrollmentController.Unenroll)
	app.Post("/api/lessons/:id/complete", authMiddleware, enrollmentController.CompleteLesson)
	app.Get("/api/me/courses", authMiddleware, enrollmentController.GetMyCourses)
	app.Get("/api/me/certificates", authMiddleware, enrollmentController.GetMyCertificates)

	// Sermon routes
	sermonsController := controllers.NewSermonsController(db, cfg)
	app.Get("/api/sermon-categories", sermonsController.GetSermonCategories)
	app.Get("/api/sermons", sermonsController.GetSermons)
	app.Get("/api/sermons/:slug", sermonsController.GetSermonBySlug)

	// Bookmark routes
	bookmarksController := controllers.NewBookmarksController(db, cfg)
	app.Post("/api/bookmarks/toggle", authMiddleware, bookmarksController.ToggleBookmark)
	app.Get("/api/me/bookmarks", authMiddleware, bookmarksController.GetMyBookmarks)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/stats", adminController.GetStats)
	admin.Get("/users", adminController.ListUsers)
	admin.Put("/users/:id/role", adminController.UpdateUserRole)

	admin.Post("/categories", adminController.CreateCourseCategory)
	admin.Put("/categories/:id", adminController.UpdateCourseCategory)
	admin.Delete("/categories/:id", adminController.DeleteCourseCategory)

	admin.Get("/courses", adminController.ListCourses)
	admin.Post("/courses", adminController.CreateCourse)
	admin.Get("/courses/:id", adminController.GetCourse)
	admin.Put("/courses/:id", adminController.UpdateCourse)
	admin.Delete("/courses/:id", adminController.DeleteCourse)
	admin.Post("/courses/:id/lessons", adminController.AddLesson)
	admin.Put("/courses/:id/lessons/:lessonId", adminController.UpdateLesson)
	admin.Delete("/courses/:id/lessons/:lessonId", adminController.DeleteLesson)

	admin.Post("/sermon-categories", adminController.CreateSermonCategory)
	admin.Delete("/sermon-categories/:id", adminController.DeleteSermonCategory)
	admin.Get("/sermons", adminController.ListSermons)
	admin.Post("/sermons", adminController.CreateSermon)
	admin.Put("/sermons/:id", adminController.UpdateSermon)
	admin.Delete("/sermons/:id", adminController.DeleteSermon)
}
