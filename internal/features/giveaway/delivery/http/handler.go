package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/service"
	"giveaway-engine/internal/platform/chat"
)

// GiveawayHandler exposes the lifecycle, draft and entry operations over
// REST. The gateway in front of it authenticates users and forwards the
// caller identity in the X-User-ID header.
type GiveawayHandler struct {
	lifecycle *service.LifecycleService
	pending   *service.PendingService
	entries   *service.EntryService
}

func NewGiveawayHandler(lifecycle *service.LifecycleService, pending *service.PendingService, entries *service.EntryService) *GiveawayHandler {
	return &GiveawayHandler{
		lifecycle: lifecycle,
		pending:   pending,
		entries:   entries,
	}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	ws := router.Group("/workspaces/:workspace")

	giveaways := ws.Group("/giveaways")
	{
		giveaways.GET("", h.list)
		giveaways.GET("/:id", h.getByID)
		giveaways.GET("/:id/leaderboard", h.leaderboard)
		giveaways.POST("/:id/cancel", h.cancel)
		giveaways.POST("/:id/finish", h.finish)
		giveaways.POST("/:id/claim", h.claim)
		giveaways.DELETE("/:id", h.delete)

		giveaways.POST("/:id/join", h.join)
		giveaways.POST("/:id/answer", h.answer)
	}

	pending := ws.Group("/pending")
	{
		pending.POST("", h.createDraft)
		pending.GET("", h.listDrafts)
		pending.GET("/:id", h.getDraft)
		pending.PATCH("/:id", h.updateDraft)
		pending.DELETE("/:id", h.discardDraft)
		pending.POST("/:id/start", h.startDraft)
	}
}

// memberInput is the caller identity the gateway resolved, roles included.
type memberInput struct {
	UserID   string   `json:"user_id" binding:"required"`
	Username string   `json:"username"`
	RoleIDs  []string `json:"role_ids"`
}

func (m *memberInput) member() chat.Member {
	return chat.Member{
		User:    chat.User{ID: m.UserID, Username: m.Username},
		RoleIDs: m.RoleIDs,
	}
}

func viewerID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// writeError translates service errors to status codes. Rejections are the
// caller's fault; collaborator failures map to 502; everything else
// unexpected is a 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case service.IsRejection(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		if appErr, ok := apperrors.AsAppError(err); ok {
			switch {
			case appErr.IsNotFound():
				c.JSON(http.StatusNotFound, gin.H{"error": appErr.Message, "code": appErr.Code})
			case appErr.IsValidation():
				c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message, "code": appErr.Code})
			case appErr.IsCollaborator():
				c.JSON(http.StatusBadGateway, gin.H{"error": appErr.Message, "code": appErr.Code})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": appErr.Message, "code": appErr.Code})
			}
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *GiveawayHandler) list(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	gs, err := h.lifecycle.List(c.Request.Context(), c.Param("workspace"), viewerID(c), activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

func (h *GiveawayHandler) getByID(c *gin.Context) {
	g, err := h.lifecycle.Get(c.Request.Context(), c.Param("workspace"), c.Param("id"), viewerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GiveawayHandler) leaderboard(c *gin.Context) {
	g, err := h.lifecycle.Get(c.Request.Context(), c.Param("workspace"), c.Param("id"), viewerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if g.EntryMode != models.EntryModeCompetition {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leaderboard is only available for competitions"})
		return
	}
	// With the live toggle off, standings stay creator-only until the end
	// results are posted.
	if !g.LiveLeaderboard && viewerID(c) != g.CreatorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "the live leaderboard is disabled for this giveaway"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": service.LeaderboardText(g)})
}

func (h *GiveawayHandler) cancel(c *gin.Context) {
	cancelled, err := h.lifecycle.Cancel(c.Request.Context(), c.Param("workspace"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

func (h *GiveawayHandler) finish(c *gin.Context) {
	if err := h.lifecycle.ForceFinish(c.Request.Context(), c.Param("workspace"), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) claim(c *gin.Context) {
	var input memberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prize, err := h.lifecycle.Claim(c.Request.Context(), c.Param("workspace"), c.Param("id"), input.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prize": prize})
}

func (h *GiveawayHandler) delete(c *gin.Context) {
	if err := h.lifecycle.Delete(c.Request.Context(), c.Param("workspace"), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) join(c *gin.Context) {
	var input memberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.entries.JoinButton(c.Request.Context(), c.Param("workspace"), c.Param("id"), input.member())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entered": true})
}

type answerInput struct {
	memberInput
	Answer string `json:"answer" binding:"required"`
}

func (h *GiveawayHandler) answer(c *gin.Context) {
	var input answerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspaceID, id := c.Param("workspace"), c.Param("id")
	member := input.member()

	g, err := h.lifecycle.Get(c.Request.Context(), workspaceID, id, input.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	var correct bool
	switch g.EntryMode {
	case models.EntryModeTrivia:
		correct, err = h.entries.AnswerTrivia(c.Request.Context(), workspaceID, id, member, input.Answer)
	case models.EntryModeCompetition:
		correct, err = h.entries.AnswerCompetition(c.Request.Context(), workspaceID, id, member, input.Answer)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "this giveaway does not take answers"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"correct": correct})
}

type createDraftInput struct {
	CreatorID string           `json:"creator_id" binding:"required"`
	EntryMode models.EntryMode `json:"entry_mode" binding:"required"`
}

func (h *GiveawayHandler) createDraft(c *gin.Context) {
	var input createDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.pending.CreateDraft(c.Request.Context(), c.Param("workspace"), input.CreatorID, input.EntryMode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draftResponse(draft))
}

func (h *GiveawayHandler) listDrafts(c *gin.Context) {
	drafts, err := h.pending.List(c.Request.Context(), c.Param("workspace"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, draftResponse(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *GiveawayHandler) getDraft(c *gin.Context) {
	draft, err := h.pending.Get(c.Request.Context(), c.Param("workspace"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft))
}

// draftPatchInput is a PendingPatch plus a human-readable duration form
// ("1d2h30m", "90s", "01:30:00") that takes precedence over duration_ms.
type draftPatchInput struct {
	models.PendingPatch
	DurationText *string `json:"duration,omitempty"`
}

func (h *GiveawayHandler) updateDraft(c *gin.Context) {
	var input draftPatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := input.PendingPatch
	if input.DurationText != nil {
		d, err := models.ParseDuration(*input.DurationText)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ms := d.Milliseconds()
		patch.Duration = &ms
	}

	draft, err := h.pending.UpdateDraft(c.Request.Context(), c.Param("workspace"), c.Param("id"), &patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft))
}

func (h *GiveawayHandler) discardDraft(c *gin.Context) {
	if err := h.pending.Discard(c.Request.Context(), c.Param("workspace"), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) startDraft(c *gin.Context) {
	g, err := h.pending.Start(c.Request.Context(), c.Param("workspace"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// draftResponse attaches the derived status, which is never stored.
func draftResponse(d *models.PendingGiveaway) gin.H {
	return gin.H{
		"draft":  d,
		"status": models.DeriveStatus(d),
	}
}
