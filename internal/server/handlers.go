package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/progression"
)

type chatRequest struct {
	Message   string `json:"message"`
	LessonID  string `json:"lessonId"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	chat.Reply
	SessionID string `json:"sessionId"`
}

// POST /api/ai-chat
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidJSON, errors.New("Invalid JSON"))
		return
	}
	if req.Message == "" {
		RespondError(c, http.StatusBadRequest, CodeInvalidInput, errors.New("Missing message"))
		return
	}

	sess, created := s.sessions.Open(req.SessionID, req.LessonID)
	if created {
		s.log.Debug("chat session opened", "session", sess.ID, "lesson", sess.LessonID())
	}

	reply, err := sess.Send(c.Request.Context(), req.Message)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, chatResponse{Reply: reply, SessionID: sess.ID})
}

type catalogResponse struct {
	Roadmaps []catalog.Roadmap        `json:"roadmaps"`
	Lessons  []progression.LessonView `json:"lessons"`
	Progress string                   `json:"progress"`
}

// GET /api/catalog
func (s *Server) getCatalog(c *gin.Context) {
	ctx := c.Request.Context()
	st := s.ctrl.State(ctx)
	cat := s.ctrl.Catalog()
	RespondOK(c, catalogResponse{
		Roadmaps: cat.Roadmaps(),
		Lessons:  progression.Views(st, cat),
		Progress: progression.Profile{Completed: progression.CompletedCount(st, cat), Total: cat.Len()}.ProgressText(),
	})
}

type lessonResponse struct {
	Lesson     catalog.Lesson     `json:"lesson"`
	Module     string             `json:"module"`
	Status     progression.Status `json:"status"`
	PreviousID string             `json:"previousId,omitempty"`
	NextID     string             `json:"nextId,omitempty"`
}

// GET /api/lessons/:id
func (s *Server) getLesson(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.ctrl.RequireUnlocked(ctx, id); err != nil {
		respondErr(c, err)
		return
	}

	cat := s.ctrl.Catalog()
	lesson, _ := cat.FindByID(id)
	resp := lessonResponse{
		Lesson: lesson,
		Module: cat.ModuleTitle(id),
		Status: progression.StatusOf(id, s.ctrl.State(ctx), cat),
	}
	prev, next := cat.Adjacent(id)
	if prev != nil {
		resp.PreviousID = prev.ID
	}
	if next != nil {
		resp.NextID = next.ID
	}
	RespondOK(c, resp)
}

// requireOpen rejects locked lessons. Unknown ids pass so the controller
// can treat them as no-ops.
func (s *Server) requireOpen(c *gin.Context, id string) bool {
	err := s.ctrl.RequireUnlocked(c.Request.Context(), id)
	if err == nil || errors.Is(err, progression.ErrUnknownLesson) {
		return true
	}
	respondErr(c, err)
	return false
}

// POST /api/lessons/:id/complete
func (s *Server) completeLesson(c *gin.Context) {
	id := c.Param("id")
	if !s.requireOpen(c, id) {
		return
	}
	out, err := s.ctrl.CompleteLesson(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, out)
}

type quizRequest struct {
	Answers []int `json:"answers"`
}

// POST /api/lessons/:id/quiz
func (s *Server) submitQuiz(c *gin.Context) {
	id := c.Param("id")
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidJSON, errors.New("Invalid JSON"))
		return
	}
	if !s.requireOpen(c, id) {
		return
	}
	res, err := s.ctrl.SubmitQuiz(c.Request.Context(), id, req.Answers)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, res)
}

// GET /api/state
func (s *Server) getState(c *gin.Context) {
	RespondOK(c, s.ctrl.State(c.Request.Context()))
}

// GET /api/profile
func (s *Server) getProfile(c *gin.Context) {
	p, err := s.ctrl.Profile(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, p)
}

type actionRequest struct {
	Action string `json:"action"`
}

// POST /api/actions
func (s *Server) recordAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidJSON, errors.New("Invalid JSON"))
		return
	}
	a, err := progression.ParseAction(req.Action)
	if err != nil {
		respondErr(c, err)
		return
	}
	out, err := s.ctrl.RecordAction(c.Request.Context(), a)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, out)
}
