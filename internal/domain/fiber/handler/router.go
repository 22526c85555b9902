package handler

import (
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/middleware"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Resume    *ResumeHandler
	File      *FileHandler
	Ranking   *RankingHandler
	Candidate *CandidateHandler
	Analytics *AnalyticsHandler
	Personnel *PersonnelHandler
	Email     *EmailHandler
	Interview *InterviewHandler
	Project   *ProjectHandler
	Auth      *AuthHandler
}

// RegisterRoutes mounts every group under /api/v1 and the endpoints the
// dashboard calls directly at the root.
func RegisterRoutes(app *fiber.App, h *Handlers, authCfg *config.AuthConfig, parser middleware.TokenParser) {
	hr := middleware.RequireRole(authCfg, parser, model.RoleHR)
	analyze := websocket.New(h.Resume.Analyze)
	multiUpload := websocket.New(h.Resume.MultiUpload)

	app.Get("/resume-analyze", RequireUpgrade, hr, analyze)
	app.Get("/multi-upload", RequireUpgrade, hr, multiUpload)
	app.Get("/resume-analysis-results", hr, h.Resume.Results)
	app.Post("/rank-resumes", hr, h.Ranking.Rank)
	app.Get("/generate-chart-data", hr, h.Analytics.ChartData)
	app.Post("/send-email/bulk", hr, h.Email.Bulk)

	api := app.Group("/api/v1")

	resume := api.Group("/resume", hr)
	resume.Get("/resume-analyze", RequireUpgrade, analyze)
	resume.Get("/multi-upload", RequireUpgrade, multiUpload)
	resume.Get("/resume-analysis-results", h.Resume.Results)
	resume.Get("/similar", h.Resume.Similar)
	resume.Post("/rank-resumes", h.Ranking.Rank)

	candidates := api.Group("/candidates", hr)
	candidates.Get("/", h.Candidate.List)
	candidates.Get("/skills", h.Candidate.Skills)

	api.Group("/analytics", hr).Get("/generate-chart-data", h.Analytics.ChartData)
	api.Group("/bias", hr).Post("/bias-analysis", h.Personnel.Bias)

	email := api.Group("/email", hr)
	email.Post("/send-email/individual", h.Email.Individual)
	email.Post("/send-email/bulk", h.Email.Bulk)

	personnel := api.Group("/personnel", hr)
	personnel.Post("/selected-personnel/upload", h.Personnel.Upload)
	personnel.Get("/selected-personnel", h.Personnel.List)

	chat := api.Group("/chat")
	chat.Post("/update_chat_history", h.Interview.UpdateHistory)
	chat.Get("/get_chat_history", h.Interview.Histories)

	api.Group("/interview").Post("/analyze_interview", h.Interview.Analyze)

	project := api.Group("/project")
	project.Post("/process_url_or_path", h.Project.Process)
	project.Post("/analyze_project", h.Project.Analyze)

	api.Group("/file", hr).Get("/get_file/:file_name", h.File.Get)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimiter(10, time.Minute), h.Auth.SignUp)
	auth.Post("/login", middleware.RateLimiter(10, time.Minute), h.Auth.Login)
}
