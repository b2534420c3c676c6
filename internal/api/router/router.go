package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/config"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/api/handler"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/api/middleware"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/jwt"
)

// 请求体上限，需容纳批量导入的 Excel 文件
const maxBodyBytes = 10 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, blacklist middleware.Blacklist, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/send-verification", h.Auth.SendVerification)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetProfile)
				users.PUT("/me", h.User.UpdateProfile)
				users.PUT("/me/teacher", middleware.RoleAuth("teacher"), h.User.UpdateTeacherProfile)
				users.PUT("/me/password", h.User.ChangePassword)
			}

			// 学生与报到模块
			students := authorized.Group("/students")
			{
				students.POST("/report", middleware.RoleAuth("student"), h.Student.Report)
				students.GET("", middleware.RoleAuth("admin", "teacher"), h.Student.ListStudents)
				students.PUT("/:id/status", middleware.RoleAuth("admin", "teacher"), h.Student.OverrideStatus)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.List)
				classes.GET("/:id", h.Class.Get)
				classes.GET("/:id/students", middleware.RoleAuth("admin", "teacher"), h.Class.ListStudents)
				classes.POST("", middleware.RoleAuth("admin"), h.Class.Create)
				classes.PUT("/:id", middleware.RoleAuth("admin"), h.Class.Update)
				classes.DELETE("/:id", middleware.RoleAuth("admin"), h.Class.Delete)
				classes.POST("/:id/students", middleware.RoleAuth("admin"), h.Class.AssignStudents)
				classes.DELETE("/:id/students/:studentID", middleware.RoleAuth("admin"), h.Class.RemoveStudent)
				classes.DELETE("/:id/students", middleware.RoleAuth("admin"), h.Class.RemoveStudents)
				classes.PUT("/students/:studentID/transfer", middleware.RoleAuth("admin"), h.Class.TransferStudent)
			}

			// 宿舍模块
			dormitories := authorized.Group("/dormitories")
			{
				dormitories.GET("/buildings", middleware.RoleAuth("admin", "teacher"), h.Dormitory.ListBuildings)
				dormitories.POST("/buildings", middleware.RoleAuth("admin"), h.Dormitory.CreateBuilding)
				dormitories.PUT("/buildings/:id", middleware.RoleAuth("admin"), h.Dormitory.UpdateBuilding)
				dormitories.DELETE("/buildings/:id", middleware.RoleAuth("admin"), h.Dormitory.DeleteBuilding)
				dormitories.GET("/buildings/:id/rooms", middleware.RoleAuth("admin", "teacher"), h.Dormitory.ListRooms)
				dormitories.POST("/rooms", middleware.RoleAuth("admin"), h.Dormitory.CreateRoom)
				dormitories.PUT("/rooms/:id", middleware.RoleAuth("admin"), h.Dormitory.UpdateRoom)
				dormitories.DELETE("/rooms/:id", middleware.RoleAuth("admin"), h.Dormitory.DeleteRoom)
				dormitories.GET("/rooms/:id/occupants", middleware.RoleAuth("admin", "teacher"), h.Dormitory.ListRoomOccupants)
				dormitories.POST("/assignments", middleware.RoleAuth("admin"), h.Dormitory.AssignRoom)
				dormitories.PUT("/students/:studentID/room", middleware.RoleAuth("admin"), h.Dormitory.ChangeRoom)
				dormitories.DELETE("/students/:studentID/room", middleware.RoleAuth("admin"), h.Dormitory.Checkout)
				dormitories.GET("/students/:studentID/room", h.Dormitory.GetStudentAssignment)
				dormitories.GET("/unassigned-students", middleware.RoleAuth("admin"), h.Dormitory.ListUnassignedStudents)
			}

			// 成绩模块
			scores := authorized.Group("/scores")
			{
				scores.GET("/me", middleware.RoleAuth("student"), h.Score.GetMyScore)
				scores.GET("", middleware.RoleAuth("admin", "teacher"), h.Score.List)
				scores.GET("/stats", middleware.RoleAuth("admin", "teacher"), h.Score.Stats)
				scores.POST("/import", middleware.RoleAuth("admin"), h.Score.Import)
				scores.POST("/recompute-ranks", middleware.RoleAuth("admin"), h.Score.RecomputeRanks)
			}

			// 待办模块
			todos := authorized.Group("/todos")
			{
				todos.POST("", middleware.RoleAuth("student"), h.Todo.Create)
				todos.GET("/mine", middleware.RoleAuth("student"), h.Todo.ListMine)
				todos.DELETE("/:id", middleware.RoleAuth("student"), h.Todo.Delete)
				todos.GET("/review", middleware.RoleAuth("teacher"), h.Todo.ListForTeacher)
				todos.PUT("/:id/review", middleware.RoleAuth("teacher"), h.Todo.Review)
			}

			// 统计模块
			stats := authorized.Group("/stats")
			stats.Use(middleware.RoleAuth("admin", "teacher"))
			{
				stats.GET("/overview", h.Stats.Overview)
				stats.GET("/enrollment-trend", h.Stats.EnrollmentTrend)
				stats.GET("/last-logins", h.Stats.LastLogins)
			}

			// 管理模块（仅管理员）
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.GET("/users", h.User.ListUsers)
				admin.GET("/teachers", h.User.ListTeachers)
				admin.PUT("/users/:id", h.User.AdminUpdateUser)
				admin.PUT("/users/:id/password", h.User.ResetPassword)
				admin.DELETE("/users/:id", h.User.DeleteUser)

				admin.POST("/enrollment/sweep", h.Student.Sweep)

				admin.GET("/logs", h.Stats.Logs)

				admin.GET("/settings", h.Settings.Get)
				admin.PUT("/settings", h.Settings.Update)

				admin.POST("/import/teachers", h.Importer.ImportTeachers)
				admin.GET("/import/teachers/template", h.Importer.TeacherTemplate)
				admin.POST("/import/students", h.Importer.ImportStudents)
				admin.GET("/import/students/template", h.Importer.StudentTemplate)
				admin.GET("/export/students", h.Importer.ExportStudents)

				admin.GET("/analysis/report", h.Analysis.Report)
			}
		}
	}

	return r
}
