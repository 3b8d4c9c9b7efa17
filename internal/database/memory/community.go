package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"
)

type forumRepository struct{ s *Store }

func (r *forumRepository) CreatePost(_ context.Context, post *entity.ForumPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.ID = r.s.id()
	c := *post
	r.s.posts[c.ID] = &c
	return nil
}

func (r *forumRepository) GetPost(_ context.Context, id int64) (*entity.ForumPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, entity.ErrPostNotFound
	}
	c := *p
	return &c, nil
}

func (r *forumRepository) ListPostsByEvent(_ context.Context, eventID int64) ([]*entity.ForumPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var posts []*entity.ForumPost
	for _, p := range r.s.posts {
		if p.EventID == eventID {
			c := *p
			posts = append(posts, &c)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *forumRepository) CreateComment(_ context.Context, comment *entity.ForumComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return entity.ErrPostNotFound
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	comment.ID = r.s.id()
	c := *comment
	r.s.comments[c.ID] = &c
	return nil
}

func (r *forumRepository) ListComments(_ context.Context, postID int64) ([]*entity.ForumComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var comments []*entity.ForumComment
	for _, cm := range r.s.comments {
		if cm.PostID == postID {
			c := *cm
			comments = append(comments, &c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

type pollRepository struct{ s *Store }

func copyPoll(p *entity.Poll) *entity.Poll {
	c := *p
	c.Options = make([]*entity.PollOption, len(p.Options))
	for i, o := range p.Options {
		oc := *o
		c.Options[i] = &oc
	}
	return &c
}

func (r *pollRepository) Create(_ context.Context, poll *entity.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now()
	}
	poll.ID = r.s.id()
	for _, o := range poll.Options {
		o.ID = r.s.id()
		o.PollID = poll.ID
	}
	r.s.polls[poll.ID] = copyPoll(poll)
	return nil
}

func (r *pollRepository) GetByID(_ context.Context, id int64) (*entity.Poll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.polls[id]
	if !ok {
		return nil, entity.ErrPollNotFound
	}
	return copyPoll(p), nil
}

func (r *pollRepository) ListByEvent(_ context.Context, eventID int64) ([]*entity.Poll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var polls []*entity.Poll
	for _, p := range r.s.polls {
		if p.EventID == eventID {
			polls = append(polls, copyPoll(p))
		}
	}
	sort.Slice(polls, func(i, j int) bool { return polls[i].ID > polls[j].ID })
	return polls, nil
}

func (r *pollRepository) Vote(_ context.Context, vote *entity.PollVote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, v := range r.s.votes {
		if v.PollID == vote.PollID && v.UserID == vote.UserID {
			return entity.ErrAlreadyVoted
		}
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	vote.ID = r.s.id()
	c := *vote
	r.s.votes[c.ID] = &c
	return nil
}

func (r *pollRepository) CountVotes(_ context.Context, pollID int64) (map[int64]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[int64]int)
	for _, v := range r.s.votes {
		if v.PollID == pollID {
			counts[v.OptionID]++
		}
	}
	return counts, nil
}

type questionRepository struct{ s *Store }

func copyQuestion(q *entity.Question) *entity.Question {
	c := *q
	if q.AnsweredAt != nil {
		at := *q.AnsweredAt
		c.AnsweredAt = &at
	}
	return &c
}

func (r *questionRepository) Create(_ context.Context, q *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if q.AskedAt.IsZero() {
		q.AskedAt = time.Now()
	}
	q.ID = r.s.id()
	r.s.questions[q.ID] = copyQuestion(q)
	return nil
}

func (r *questionRepository) GetByID(_ context.Context, id int64) (*entity.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return nil, entity.ErrQuestionNotFound
	}
	return copyQuestion(q), nil
}

func (r *questionRepository) Answer(_ context.Context, id int64, answer string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.questions[id]
	if !ok {
		return entity.ErrQuestionNotFound
	}
	q.Answer = answer
	q.AnsweredAt = &at
	return nil
}

func (r *questionRepository) ListByEvent(_ context.Context, eventID int64) ([]*entity.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var questions []*entity.Question
	for _, q := range r.s.questions {
		if q.EventID == eventID {
			questions = append(questions, copyQuestion(q))
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID > questions[j].ID })
	return questions, nil
}

type orderRepository struct{ s *Store }

func (r *orderRepository) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.TicketID != nil {
		for _, o := range r.s.orders {
			if o.TicketID != nil && *o.TicketID == *order.TicketID {
				return entity.ErrOrderExists
			}
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.ID = r.s.id()
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func copyOrder(o *entity.Order) *entity.Order {
	c := *o
	if o.TicketID != nil {
		id := *o.TicketID
		c.TicketID = &id
	}
	return &c
}

func (r *orderRepository) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *orderRepository) GetByTicketID(_ context.Context, ticketID int64) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.TicketID != nil && *o.TicketID == ticketID {
			return copyOrder(o), nil
		}
	}
	return nil, entity.ErrOrderNotFound
}

func (r *orderRepository) ListByUser(_ context.Context, userID int64) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var orders []*entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
