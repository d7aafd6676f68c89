package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/controllers"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/middleware"
	"github.com/yigit/campusnet/internal/pkg/websocket"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Health       *controllers.HealthController
	Students     *controllers.StudentController
	Faculty      *controllers.EntityController[models.Faculty, models.FacultyPatch]
	Internships  *controllers.EntityController[models.Internship, models.InternshipPatch]
	Competitions *controllers.EntityController[models.Competition, models.CompetitionPatch]
	Certificates *controllers.EntityController[models.Certificate, models.CertificatePatch]
	Projects     *controllers.EntityController[models.Project, models.ProjectPatch]
	Feed         *controllers.FeedController
	GraphQL      gin.HandlerFunc
	FeedSocket   *websocket.Handler
}

type crudController interface {
	List(ctx *gin.Context)
	Get(ctx *gin.Context)
	Create(ctx *gin.Context)
	Update(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type verifiableController interface {
	crudController
	Verify(ctx *gin.Context)
}

func registerCRUD(g *gin.RouterGroup, c crudController) {
	g.GET("", c.List)
	g.GET("/:id", c.Get)
	g.POST("", c.Create)
	g.PATCH("/:id", c.Update)
	g.DELETE("/:id", c.Delete)
}

func registerOwned(g *gin.RouterGroup, c verifiableController) {
	registerCRUD(g, c)
	g.PUT("/:id/verify", c.Verify)
}

// SetupRouter configures all application routes. Requests without a token
// reach the handlers anonymously and the role gate decides what they may do.
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", c.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.OptionalJWTAuth())
	v1.GET("/health", c.Health.Health)

	students := v1.Group("/students")
	{
		registerCRUD(students, c.Students)
		students.GET("/:id/profile", c.Students.Profile)
		students.POST("/:id/deactivate", c.Students.Deactivate)
		students.PUT("/:id/profile-image", c.Students.UploadProfileImage)
	}

	registerCRUD(v1.Group("/faculty"), c.Faculty)
	registerOwned(v1.Group("/internships"), c.Internships)
	registerOwned(v1.Group("/competitions"), c.Competitions)
	registerOwned(v1.Group("/certificates"), c.Certificates)
	registerOwned(v1.Group("/projects"), c.Projects)

	posts := v1.Group("/posts")
	{
		posts.GET("", c.Feed.ListPosts)
		posts.GET("/:id", c.Feed.GetPost)
		posts.POST("", c.Feed.CreatePost)
		posts.DELETE("/:id", c.Feed.DeletePost)
		posts.POST("/:id/like", c.Feed.LikePost)
		posts.DELETE("/:id/like", c.Feed.UnlikePost)
		posts.POST("/:id/comments", c.Feed.AddComment)
		posts.DELETE("/:id/comments/:commentId", c.Feed.DeleteComment)
	}

	v1.POST("/graphql", c.GraphQL)

	// The feed socket requires a principal before upgrading
	if c.FeedSocket != nil {
		v1.GET("/feed/ws", authMiddleware.SocketAuth(), c.FeedSocket.HandleConnection)
	}
}
