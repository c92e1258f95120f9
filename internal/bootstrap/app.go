// Package bootstrap is the composition root: it opens the database,
// migrates it, builds the analysis provider and wires every feature
// package into the router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"mycv-backend/internal/jobs"
	"mycv-backend/internal/llm"
	"mycv-backend/internal/profile"
	"mycv-backend/internal/resumes"
	"mycv-backend/internal/shared/config"
	"mycv-backend/internal/shared/server"
	"mycv-backend/internal/shared/storage/db"
	"mycv-backend/internal/shared/telemetry"
)

// App holds the built dependency graph.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Provider llm.Provider

	ProfileService *profile.Service
	JobsService    *jobs.Service
	ResumesService *resumes.Service
}

// Build constructs the app. A migration failure aborts startup: serving
// requests against a half-migrated schema corrupts data silently, which
// is worse than refusing to start.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	database, err := db.Open(ctx, cfg.DBPath, db.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	provider, err := llm.New(llm.Config{
		Provider:        cfg.LLMProvider,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		ClaudeModel:     cfg.ClaudeModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("build analysis provider: %w", err)
	}

	profileSvc := profile.NewService(profile.NewSQLiteRepo(database))
	jobsSvc := jobs.NewService(jobs.NewSQLiteRepo(database))
	resumesSvc := resumes.NewService(resumes.NewSQLiteRepo(database), jobsSvc, profileSvc, provider)

	router := server.NewRouter(server.RouterDeps{
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Handlers: []server.RouteRegistrar{
			profile.NewHandler(profileSvc),
			jobs.NewHandler(jobsSvc),
			resumes.NewHandler(resumesSvc),
		},
	})

	telemetry.Info("app.built", map[string]any{
		"db_path":  cfg.DBPath,
		"provider": cfg.LLMProvider,
		"env":      cfg.Env,
	})

	return &App{
		Config:         cfg,
		Router:         router,
		DB:             database,
		Provider:       provider,
		ProfileService: profileSvc,
		JobsService:    jobsSvc,
		ResumesService: resumesSvc,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	return a.DB.Close()
}
