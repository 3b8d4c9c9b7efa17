package service

import (
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumService_Threads(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	guest := env.seedUser(t, "guest@example.com")
	event := env.seedEvent(t, organizer.ID, 10)

	first, err := env.services.Forum.CreatePost(env.ctx(), event.ID, guest.ID, &ForumPostRequest{Title: "Parking?", Content: "Is there parking"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := env.services.Forum.CreatePost(env.ctx(), event.ID, organizer.ID, &ForumPostRequest{Title: "Agenda", Content: "Posted soon"})
	require.NoError(t, err)

	_, err = env.services.Forum.AddComment(env.ctx(), first.ID, organizer.ID, &ForumCommentRequest{Content: "Yes, level -1"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.services.Forum.AddComment(env.ctx(), first.ID, guest.ID, &ForumCommentRequest{Content: "Thanks"})
	require.NoError(t, err)

	threads, err := env.services.Forum.GetEventPosts(env.ctx(), event.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, second.ID, threads[0].ID)
	assert.Equal(t, "org", threads[0].AuthorName)
	assert.NotNil(t, threads[0].Comments)
	assert.Equal(t, 0, threads[0].CommentCount)

	assert.Equal(t, first.ID, threads[1].ID)
	assert.Equal(t, "guest", threads[1].AuthorName)
	require.Equal(t, 2, threads[1].CommentCount)
	assert.Equal(t, "Yes, level -1", threads[1].Comments[0].Content)
	assert.Equal(t, "Thanks", threads[1].Comments[1].Content)
}

func TestForumService_GetPost(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	event := env.seedEvent(t, organizer.ID, 10)

	post, err := env.services.Forum.CreatePost(env.ctx(), event.ID, organizer.ID, &ForumPostRequest{Title: "Welcome", Content: "Hi all"})
	require.NoError(t, err)
	_, err = env.services.Forum.AddComment(env.ctx(), post.ID, organizer.ID, &ForumCommentRequest{Content: "First"})
	require.NoError(t, err)

	thread, err := env.services.Forum.GetPost(env.ctx(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", thread.Title)
	assert.Equal(t, "org", thread.AuthorName)
	require.Equal(t, 1, thread.CommentCount)
	assert.Equal(t, "First", thread.Comments[0].Content)

	_, err = env.services.Forum.GetPost(env.ctx(), 9999)
	assert.ErrorIs(t, err, entity.ErrPostNotFound)
}

func TestForumService_Rejects(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	event := env.seedEvent(t, organizer.ID, 10)

	_, err := env.services.Forum.CreatePost(env.ctx(), event.ID, organizer.ID, &ForumPostRequest{Title: " ", Content: "x"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = env.services.Forum.CreatePost(env.ctx(), 9999, organizer.ID, &ForumPostRequest{Title: "t", Content: "x"})
	assert.ErrorIs(t, err, entity.ErrEventNotFound)

	_, err = env.services.Forum.AddComment(env.ctx(), 9999, organizer.ID, &ForumCommentRequest{Content: "x"})
	assert.ErrorIs(t, err, entity.ErrPostNotFound)

	_, err = env.services.Forum.GetEventPosts(env.ctx(), 9999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPollService_VotingAndResults(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	event := env.seedEvent(t, organizer.ID, 10)

	poll, err := env.services.Polls.CreatePoll(env.ctx(), event.ID, organizer.ID, &PollRequest{
		Question: "Which track?",
		EndsAt:   env.clock.Now().Add(time.Hour),
		Options:  []string{"Backend", " Frontend ", ""},
	})
	require.NoError(t, err)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "Frontend", poll.Options[1].Text)
	assert.True(t, poll.Active)
	assert.Zero(t, poll.TotalVotes)

	backend, frontend := poll.Options[0].ID, poll.Options[1].ID
	voters := []struct {
		email  string
		option int64
	}{
		{"v1@example.com", backend},
		{"v2@example.com", backend},
		{"v3@example.com", frontend},
	}

	var res *entity.PollResult
	for _, v := range voters {
		user := env.seedUser(t, v.email)
		res, err = env.services.Polls.Vote(env.ctx(), poll.ID, user.ID, &VoteRequest{OptionID: v.option})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, res.TotalVotes)
	assert.Equal(t, 2, res.Options[0].VoteCount)
	assert.Equal(t, 66.7, res.Options[0].Percentage)
	assert.Equal(t, 33.3, res.Options[1].Percentage)

	voter, err := env.repos.Users.GetByEmail(env.ctx(), "v1@example.com")
	require.NoError(t, err)
	_, err = env.services.Polls.Vote(env.ctx(), poll.ID, voter.ID, &VoteRequest{OptionID: frontend})
	assert.ErrorIs(t, err, entity.ErrAlreadyVoted)

	_, err = env.services.Polls.Vote(env.ctx(), poll.ID, organizer.ID, &VoteRequest{OptionID: 9999})
	assert.ErrorIs(t, err, entity.ErrOptionNotInPoll)

	env.clock.Advance(2 * time.Hour)
	_, err = env.services.Polls.Vote(env.ctx(), poll.ID, organizer.ID, &VoteRequest{OptionID: backend})
	assert.ErrorIs(t, err, entity.ErrPollEnded)

	polls, err := env.services.Polls.GetEventPolls(env.ctx(), event.ID)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.False(t, polls[0].Active)
	assert.Equal(t, 3, polls[0].TotalVotes)
}

func TestPollService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	event := env.seedEvent(t, organizer.ID, 10)
	future := env.clock.Now().Add(time.Hour)

	tests := []struct {
		name    string
		eventID int64
		req     PollRequest
		wantErr error
	}{
		{"blank question", event.ID, PollRequest{Question: " ", EndsAt: future, Options: []string{"a", "b"}}, entity.ErrInvalidInput},
		{"one option", event.ID, PollRequest{Question: "q", EndsAt: future, Options: []string{"a", "  "}}, entity.ErrInvalidInput},
		{"ends in the past", event.ID, PollRequest{Question: "q", EndsAt: env.clock.Now(), Options: []string{"a", "b"}}, entity.ErrInvalidInput},
		{"unknown event", 9999, PollRequest{Question: "q", EndsAt: future, Options: []string{"a", "b"}}, entity.ErrEventNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Polls.CreatePoll(env.ctx(), tt.eventID, organizer.ID, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentage(tt.part, tt.total))
	}
}

func TestQuestionService(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.seedUser(t, "org@example.com")
	guest := env.seedUser(t, "guest@example.com")
	event := env.seedEvent(t, organizer.ID, 10)

	q, err := env.services.Questions.AskQuestion(env.ctx(), event.ID, guest.ID, &QuestionRequest{Question: "Is lunch included?"})
	require.NoError(t, err)
	assert.False(t, q.Answered())

	_, err = env.services.Questions.AnswerQuestion(env.ctx(), q.ID, guest.ID, &AnswerRequest{Answer: "Sure"})
	assert.ErrorIs(t, err, entity.ErrOnlyCreatorAnswers)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	env.clock.Advance(time.Hour)
	answered, err := env.services.Questions.AnswerQuestion(env.ctx(), q.ID, organizer.ID, &AnswerRequest{Answer: "Yes"})
	require.NoError(t, err)
	assert.True(t, answered.Answered())
	assert.Equal(t, env.clock.Now(), *answered.AnsweredAt)

	questions, err := env.services.Questions.GetEventQuestions(env.ctx(), event.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Yes", questions[0].Answer)

	_, err = env.services.Questions.AnswerQuestion(env.ctx(), 9999, organizer.ID, &AnswerRequest{Answer: "x"})
	assert.ErrorIs(t, err, entity.ErrQuestionNotFound)

	_, err = env.services.Questions.AskQuestion(env.ctx(), event.ID, guest.ID, &QuestionRequest{Question: ""})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}
