package handler

import (
	"log/slog"
	"strconv"

	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/fiber/v2"
)

type RankingHandler struct {
	uc *usecase.RankingUsecase
}

func NewRankingHandler(uc *usecase.RankingUsecase) *RankingHandler {
	return &RankingHandler{uc: uc}
}

func (h *RankingHandler) Rank(c *fiber.Ctx) error {
	var req dto.RankResumesRequest
	if err := parse(c, &req); err != nil {
		return badRequest(c, err)
	}
	res, err := h.uc.Rank(c.UserContext(), req.JobDescription)
	if err != nil {
		return fail(c, err, "Error ranking resumes")
	}
	slog.Info("resumes ranked", "method", res.RankingMethod, "count", len(res.RankedResumes))
	return c.JSON(res)
}

type CandidateHandler struct {
	uc *usecase.CandidateUsecase
}

func NewCandidateHandler(uc *usecase.CandidateUsecase) *CandidateHandler {
	return &CandidateHandler{uc: uc}
}

func (h *CandidateHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	q := dto.CandidateQuery{
		Search:     c.Query("search"),
		Skills:     splitList(c.Query("skills")),
		MatchAll:   c.Query("skill_match") == "all",
		Experience: splitList(c.Query("experience")),
		Education:  splitList(c.Query("education")),
		SortBy:     c.Query("sort", "rank"),
		SortDir:    c.Query("dir"),
		Page:       page,
		PageSize:   pageSize,
	}
	candidates, pagination, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err, "Failed to list candidates")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Candidates",
		Data:       candidates,
		Pagination: pagination,
	})
}

func (h *CandidateHandler) Skills(c *fiber.Ctx) error {
	skills, err := h.uc.Skills(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to list skills")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Skills",
		Data:    skills,
	})
}

type AnalyticsHandler struct {
	uc *usecase.AnalyticsUsecase
}

func NewAnalyticsHandler(uc *usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) ChartData(c *fiber.Ctx) error {
	data, err := h.uc.ChartData(c.UserContext())
	if err != nil {
		return fail(c, err, "Error generating chart data")
	}
	return c.JSON(dto.ChartDataResponse{
		Message:   "Chart data generated successfully",
		ChartData: data,
	})
}
