package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type ForumPostRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

type ForumCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type PollRequest struct {
	Question string    `json:"question" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
	Options  []string  `json:"options" binding:"required,min=2"`
}

type VoteRequest struct {
	OptionID int64 `json:"option_id" binding:"required"`
}

type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type forumService struct {
	users  database.UserRepository
	events database.EventRepository
	forum  database.ForumRepository
	now    func() time.Time
}

func NewForumService(repos *database.Repositories, now func() time.Time) ForumService {
	if now == nil {
		now = time.Now
	}
	return &forumService{
		users:  repos.Users,
		events: repos.Events,
		forum:  repos.Forum,
		now:    now,
	}
}

func (s *forumService) CreatePost(ctx context.Context, eventID, authorID int64, req *ForumPostRequest) (*entity.ForumPost, error) {
	title, content := strings.TrimSpace(req.Title), strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, entity.NewInvalidInput("Title and content are required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetVerifiedByID(ctx, authorID); err != nil {
		return nil, err
	}

	post := &entity.ForumPost{
		EventID:   eventID,
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.forum.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *forumService) AddComment(ctx context.Context, postID, authorID int64, req *ForumCommentRequest) (*entity.ForumComment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, entity.NewInvalidInput("Comment content is required")
	}
	if _, err := s.forum.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetVerifiedByID(ctx, authorID); err != nil {
		return nil, err
	}

	comment := &entity.ForumComment{
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.forum.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetEventPosts returns the newest posts first, comments oldest first.
func (s *forumService) GetEventPosts(ctx context.Context, eventID int64) ([]*entity.ForumThread, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	posts, err := s.forum.ListPostsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string)
	threads := make([]*entity.ForumThread, 0, len(posts))
	for _, p := range posts {
		thread, err := s.thread(ctx, p, names)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func (s *forumService) GetPost(ctx context.Context, postID int64) (*entity.ForumThread, error) {
	post, err := s.forum.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.thread(ctx, post, make(map[int64]string))
}

// thread loads the comments of p. names caches author names across posts.
func (s *forumService) thread(ctx context.Context, p *entity.ForumPost, names map[int64]string) (*entity.ForumThread, error) {
	comments, err := s.forum.ListComments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*entity.ForumComment{}
	}

	name, ok := names[p.AuthorID]
	if !ok {
		if author, err := s.users.GetByID(ctx, p.AuthorID); err == nil {
			name = author.Name
		}
		names[p.AuthorID] = name
	}

	return &entity.ForumThread{
		ForumPost:    *p,
		AuthorName:   name,
		Comments:     comments,
		CommentCount: len(comments),
	}, nil
}

type pollService struct {
	users  database.UserRepository
	events database.EventRepository
	polls  database.PollRepository
	now    func() time.Time
}

func NewPollService(repos *database.Repositories, now func() time.Time) PollService {
	if now == nil {
		now = time.Now
	}
	return &pollService{
		users:  repos.Users,
		events: repos.Events,
		polls:  repos.Polls,
		now:    now,
	}
}

func (s *pollService) CreatePoll(ctx context.Context, eventID, creatorID int64, req *PollRequest) (*entity.PollResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, entity.NewInvalidInput("Poll question is required")
	}

	var options []*entity.PollOption
	for _, text := range req.Options {
		if text = strings.TrimSpace(text); text != "" {
			options = append(options, &entity.PollOption{Text: text})
		}
	}
	if len(options) < 2 {
		return nil, entity.NewInvalidInput("Poll needs at least two options")
	}

	now := s.now()
	if !req.EndsAt.After(now) {
		return nil, entity.NewInvalidInput("Poll end time must be in the future")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetVerifiedByID(ctx, creatorID); err != nil {
		return nil, err
	}

	poll := &entity.Poll{
		EventID:   eventID,
		CreatorID: creatorID,
		Question:  question,
		EndsAt:    req.EndsAt,
		CreatedAt: now,
		Options:   options,
	}
	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, err
	}
	return s.result(ctx, poll)
}

func (s *pollService) Vote(ctx context.Context, pollID, userID int64, req *VoteRequest) (*entity.PollResult, error) {
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !poll.Active(now) {
		return nil, entity.ErrPollEnded
	}
	if _, err := s.users.GetVerifiedByID(ctx, userID); err != nil {
		return nil, err
	}
	if !poll.HasOption(req.OptionID) {
		return nil, entity.ErrOptionNotInPoll
	}

	vote := &entity.PollVote{
		PollID:    pollID,
		OptionID:  req.OptionID,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.polls.Vote(ctx, vote); err != nil {
		return nil, err
	}
	return s.result(ctx, poll)
}

func (s *pollService) GetEventPolls(ctx context.Context, eventID int64) ([]*entity.PollResult, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	polls, err := s.polls.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	results := make([]*entity.PollResult, 0, len(polls))
	for _, p := range polls {
		r, err := s.result(ctx, p)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *pollService) result(ctx context.Context, poll *entity.Poll) (*entity.PollResult, error) {
	counts, err := s.polls.CountVotes(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, o := range poll.Options {
		total += counts[o.ID]
	}

	res := &entity.PollResult{
		ID:         poll.ID,
		EventID:    poll.EventID,
		Question:   poll.Question,
		EndsAt:     poll.EndsAt,
		Active:     poll.Active(s.now()),
		TotalVotes: total,
		Options:    make([]*entity.PollOptionResult, 0, len(poll.Options)),
	}
	for _, o := range poll.Options {
		res.Options = append(res.Options, &entity.PollOptionResult{
			ID:         o.ID,
			Text:       o.Text,
			VoteCount:  counts[o.ID],
			Percentage: percentage(counts[o.ID], total),
		})
	}
	return res, nil
}

// percentage rounds to one decimal place.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

type questionService struct {
	users     database.UserRepository
	events    database.EventRepository
	questions database.QuestionRepository
	now       func() time.Time
}

func NewQuestionService(repos *database.Repositories, now func() time.Time) QuestionService {
	if now == nil {
		now = time.Now
	}
	return &questionService{
		users:     repos.Users,
		events:    repos.Events,
		questions: repos.Questions,
		now:       now,
	}
}

func (s *questionService) AskQuestion(ctx context.Context, eventID, userID int64, req *QuestionRequest) (*entity.Question, error) {
	text := strings.TrimSpace(req.Question)
	if text == "" {
		return nil, entity.NewInvalidInput("Question is required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetVerifiedByID(ctx, userID); err != nil {
		return nil, err
	}

	q := &entity.Question{
		EventID:  eventID,
		AskedBy:  userID,
		Question: text,
		AskedAt:  s.now(),
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionService) AnswerQuestion(ctx context.Context, questionID, userID int64, req *AnswerRequest) (*entity.Question, error) {
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return nil, entity.NewInvalidInput("Answer is required")
	}

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, q.EventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, entity.ErrOnlyCreatorAnswers
	}

	at := s.now()
	if err := s.questions.Answer(ctx, questionID, answer, at); err != nil {
		return nil, err
	}
	q.Answer = answer
	q.AnsweredAt = &at
	return q, nil
}

func (s *questionService) GetEventQuestions(ctx context.Context, eventID int64) ([]*entity.Question, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.questions.ListByEvent(ctx, eventID)
}
