package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/osteobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/osteobridge-backend/internal/http/middleware"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	MetricsEnabled bool
	ServiceName    string
	CORSOrigins    []string
	MaxUploadBytes int64

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	OrganismHandler       *httpH.OrganismHandler
	PDBHandler            *httpH.PDBHandler
	ResearchImportHandler *httpH.ResearchImportHandler

	HealthHandler *httpH.HealthHandler
}

// uploadOverhead leaves room for multipart framing and the other form fields.
const uploadOverhead = 1 << 20

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsEnabled && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}
	limitUpload := httpMW.LimitBody(cfg.MaxUploadBytes + uploadOverhead)

	api := r.Group("/api")

	// Users
	if cfg.AuthHandler != nil {
		users := api.Group("/users")
		users.POST("/register", cfg.AuthHandler.Register)
		users.POST("/login", cfg.AuthHandler.Login)
		users.POST("/refresh", requireAuth, cfg.AuthHandler.Refresh)
		users.POST("/logout", requireAuth, cfg.AuthHandler.Logout)
	}

	// Organisms
	if cfg.OrganismHandler != nil {
		organisms := api.Group("/organisms")
		organisms.GET("/clinical-stages", cfg.OrganismHandler.ClinicalStages)
		organisms.GET("", cfg.OrganismHandler.List)
		organisms.GET("/", cfg.OrganismHandler.List)
		organisms.GET("/:id/reviews", cfg.OrganismHandler.Reviews)
		organisms.POST("/:id/rating", cfg.OrganismHandler.AddRating)
	}

	// PDB models
	if cfg.PDBHandler != nil {
		pdb := api.Group("/pdb_upload")
		pdb.GET("/proteins", cfg.PDBHandler.Proteins)
		pdb.GET("/compounds", cfg.PDBHandler.Compounds)
		pdb.GET("/pdb_files/:filename", cfg.PDBHandler.File)
		pdb.POST("/upload", requireAuth, limitUpload, cfg.PDBHandler.Upload)
		pdb.POST("/protein-compound-upload", requireAuth, limitUpload, cfg.PDBHandler.Upload)
	}

	// Research data import
	if cfg.ResearchImportHandler != nil {
		imports := api.Group("/organism_upload")
		imports.POST("/import-research-data", requireAuth, limitUpload, cfg.ResearchImportHandler.Import)
		imports.GET("/runs", requireAuth, cfg.ResearchImportHandler.Runs)
	}

	return r
}
