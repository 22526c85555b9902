package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/upload"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type ResumeHandler struct {
	uc     *usecase.ResumeUsecase
	limits upload.Limits
}

func NewResumeHandler(uc *usecase.ResumeUsecase, storage *config.StorageConfig) *ResumeHandler {
	return &ResumeHandler{uc: uc, limits: upload.Limits{MaxFileBytes: storage.MaxFileBytes, MaxFiles: storage.MaxFiles}}
}

// RequireUpgrade lets only WebSocket handshakes through.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// frameSlack covers the control frames that share the read limit with
// file chunks.
const frameSlack = 4096

// readLimit caps a single frame so an oversized chunk is refused from its
// header instead of being buffered before the per-file check runs.
func readLimit(limits upload.Limits) int64 {
	if limits.MaxFileBytes <= 0 {
		return 0
	}
	return limits.MaxFileBytes + frameSlack
}

// Analyze handles one upload and replies with the extracted profile. Nothing
// is stored.
func (h *ResumeHandler) Analyze(conn *websocket.Conn) {
	conn.SetReadLimit(readLimit(h.limits))
	f, err := upload.Receive(conn, h.limits, 0)
	if err != nil {
		h.abort(conn, err)
		return
	}
	slog.Info("resume received", "file", f.SafeName, "bytes", len(f.Data))

	profile, err := h.uc.Analyze(context.Background(), f)
	if err != nil {
		slog.Error("resume analysis failed", "file", f.SafeName, "error", err)
		_ = conn.WriteMessage(websocket.TextMessage, []byte("Error processing resume: "+err.Error()))
		return
	}
	body, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("Unexpected error: "+err.Error()))
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, body)
}

// MultiUpload receives a batch. Each completed file is analysed in the
// background while the next one is read; the reply is the full results map.
func (h *ResumeHandler) MultiUpload(conn *websocket.Conn) {
	conn.SetReadLimit(readLimit(h.limits))
	ctx := context.Background()
	batch := h.uc.NewBatch(ctx)
	n, err := upload.ReceiveBatch(conn, h.limits, func(i int, f *upload.File) error {
		slog.Info("resume received", "index", i, "file", f.SafeName, "bytes", len(f.Data))
		batch.Add(f)
		return nil
	})
	if waitErr := batch.Wait(); waitErr != nil && err == nil {
		err = waitErr
	}
	if err != nil {
		h.abort(conn, err)
		return
	}
	slog.Info("batch analysed", "files", n)

	results, err := h.uc.Results(ctx)
	if err != nil {
		h.abort(conn, err)
		return
	}
	body, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		h.abort(conn, err)
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, body)
}

func (h *ResumeHandler) abort(conn *websocket.Conn, err error) {
	if errors.Is(err, upload.ErrConnectionClosed) {
		slog.Info("websocket connection closed", "error", err)
		return
	}
	slog.Warn("upload aborted", "error", err)
	_ = conn.WriteMessage(websocket.TextMessage, []byte("Unexpected error: "+err.Error()))
}

func (h *ResumeHandler) Results(c *fiber.Ctx) error {
	results, err := h.uc.Results(c.UserContext())
	if err != nil {
		return fail(c, err, "Error retrieving resume analysis results")
	}
	if len(results) == 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "Resume analysis results not found",
		})
	}
	return c.JSON(results)
}

type similarResume struct {
	Filename   string `json:"filename"`
	FullResume any    `json:"full_resume"`
}

// Similar lists stored resumes closest to ?q= by embedding distance.
func (h *ResumeHandler) Similar(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "q is required",
		})
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	found, err := h.uc.Similar(c.UserContext(), query, limit)
	if err != nil {
		return fail(c, err, "Failed to search resumes")
	}
	out := make([]similarResume, 0, len(found))
	for _, p := range found {
		out = append(out, similarResume{Filename: p.Filename, FullResume: p.Profile})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Similar resumes",
		Data:    out,
	})
}

type FileHandler struct {
	uc *usecase.ResumeUsecase
}

func NewFileHandler(uc *usecase.ResumeUsecase) *FileHandler {
	return &FileHandler{uc: uc}
}

func (h *FileHandler) Get(c *fiber.Ctx) error {
	path, err := h.uc.FilePath(c.UserContext(), c.Params("file_name"))
	if err != nil {
		return fail(c, err, "Failed to read file")
	}
	return c.Download(path)
}
