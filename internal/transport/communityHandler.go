package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

// CommunityHandler serves the per-event forum, polls and Q&A.
type CommunityHandler struct {
	forumService    service.ForumService
	pollService     service.PollService
	questionService service.QuestionService
}

func NewCommunityHandler(forum service.ForumService, polls service.PollService, questions service.QuestionService) *CommunityHandler {
	return &CommunityHandler{
		forumService:    forum,
		pollService:     polls,
		questionService: questions,
	}
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ForumPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	post, err := h.forumService.CreatePost(c.Request.Context(), eventID, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Post created", post)
}

func (h *CommunityHandler) AddComment(c *gin.Context) {
	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}

	var req service.ForumCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	comment, err := h.forumService.AddComment(c.Request.Context(), postID, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Comment added", comment)
}

func (h *CommunityHandler) GetPost(c *gin.Context) {
	postID, ok := parseID(c, "post_id")
	if !ok {
		return
	}

	post, err := h.forumService.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Post", post)
}

func (h *CommunityHandler) GetEventPosts(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	posts, err := h.forumService.GetEventPosts(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Posts", posts)
}

func (h *CommunityHandler) CreatePoll(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.PollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	poll, err := h.pollService.CreatePoll(c.Request.Context(), eventID, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Poll created", poll)
}

func (h *CommunityHandler) Vote(c *gin.Context) {
	pollID, ok := parseID(c, "poll_id")
	if !ok {
		return
	}

	var req service.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	poll, err := h.pollService.Vote(c.Request.Context(), pollID, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Vote recorded", poll)
}

func (h *CommunityHandler) GetEventPolls(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	polls, err := h.pollService.GetEventPolls(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Polls", polls)
}

func (h *CommunityHandler) AskQuestion(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	q, err := h.questionService.AskQuestion(c.Request.Context(), eventID, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Question submitted", q)
}

func (h *CommunityHandler) AnswerQuestion(c *gin.Context) {
	questionID, ok := parseID(c, "question_id")
	if !ok {
		return
	}

	var req service.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	q, err := h.questionService.AnswerQuestion(c.Request.Context(), questionID, userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Question answered", q)
}

func (h *CommunityHandler) GetEventQuestions(c *gin.Context) {
	eventID, ok := parseID(c, "id")
	if !ok {
		return
	}

	questions, err := h.questionService.GetEventQuestions(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Questions", questions)
}
