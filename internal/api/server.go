package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/clubescore/ranking-api/docs"
	v1 "github.com/clubescore/ranking-api/internal/api/handler/v1"
	"github.com/clubescore/ranking-api/internal/api/middleware"
	"github.com/clubescore/ranking-api/internal/config"
	"github.com/clubescore/ranking-api/internal/repository"
	"github.com/clubescore/ranking-api/internal/repository/dao"
	"github.com/clubescore/ranking-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	unitRepo := repository.NewUnitRepository(dao.NewUnitDAO(db))

	authHandler := s.initAuthHandler(db)
	adminHandler := v1.NewAdminHandler(service.NewAdminService(repository.NewAdminRepository(dao.NewAdminDAO(db))))
	unitHandler := v1.NewUnitHandler(service.NewUnitService(unitRepo))

	scoringSvc := service.NewScoringService(unitRepo)
	scoreboardHandler := v1.NewScoreboardHandler(scoringSvc)
	go scoreboardHandler.Run()

	scoringHandler := v1.NewScoringHandler(scoringSvc, scoreboardHandler)
	exportHandler := v1.NewExportHandler(service.NewExportService(service.NewUnitService(unitRepo), scoringSvc))

	s.MountHandlers(authHandler, adminHandler, unitHandler, scoringHandler, exportHandler, scoreboardHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	adminDAO := dao.NewAdminDAO(db)
	repo := repository.NewAdminRepository(adminDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	adminHandler *v1.AdminHandler,
	unitHandler *v1.UnitHandler,
	scoringHandler *v1.ScoringHandler,
	exportHandler *v1.ExportHandler,
	scoreboardHandler *v1.ScoreboardHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	units := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		units.GET("/me", adminHandler.HandleGetMe)

		units.GET("/units", unitHandler.HandleListUnits)
		units.POST("/units", unitHandler.HandleCreateUnit)
		units.GET("/units/:slug", unitHandler.HandleGetUnit)
		units.PUT("/units/:slug", unitHandler.HandleUpdateUnit)
		units.DELETE("/units/:slug", unitHandler.HandleDeleteUnit)
		units.PUT("/units/:slug/password", unitHandler.HandleSetUnitPassword)
		units.POST("/units/:slug/access", unitHandler.HandleVerifyUnitPassword)

		units.POST("/units/:slug/members", unitHandler.HandleAddMember)
		units.PUT("/units/:slug/members/:memberID", unitHandler.HandleUpdateMember)
		units.DELETE("/units/:slug/members/:memberID", unitHandler.HandleDeleteMember)

		units.POST("/units/:slug/criteria", unitHandler.HandleAddCriterion)
		units.PUT("/units/:slug/criteria/:criterionID", unitHandler.HandleUpdateCriterion)
		units.DELETE("/units/:slug/criteria/:criterionID", unitHandler.HandleDeleteCriterion)

		units.PUT("/units/:slug/ranks", unitHandler.HandleSetRankOverrides)

		units.GET("/units/:slug/reports", scoringHandler.HandleListReports)
		units.POST("/units/:slug/reports", scoringHandler.HandleCreateReport)
		units.GET("/units/:slug/reports/:reportID", scoringHandler.HandleGetReport)
		units.PUT("/units/:slug/reports/:reportID", scoringHandler.HandleUpdateReport)
		units.DELETE("/units/:slug/reports/:reportID", scoringHandler.HandleDeleteReport)

		units.GET("/units/:slug/ranking", scoringHandler.HandleGetRanking)
		units.GET("/ranking/top", scoringHandler.HandleGetTopMembers)
		units.POST("/units/:slug/scores/rebuild", scoringHandler.HandleRebuildScores)

		units.GET("/units/:slug/export/ranking.csv", exportHandler.HandleExportRanking)
		units.GET("/units/:slug/export/history.csv", exportHandler.HandleExportHistory)

		units.GET("/units/:slug/scoreboard", scoreboardHandler.HandleScoreboard)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Unit Ranking API"
	docs.SwaggerInfo.Description = "Score reports, member ledgers and rank ladders for youth club units."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
