package entity

import "time"

type ForumPost struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ForumComment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ForumThread is a post with its comments, oldest comment first.
type ForumThread struct {
	ForumPost
	AuthorName   string          `json:"author_name"`
	Comments     []*ForumComment `json:"comments"`
	CommentCount int             `json:"comment_count"`
}

type Poll struct {
	ID        int64         `json:"id" db:"id"`
	EventID   int64         `json:"event_id" db:"event_id"`
	CreatorID int64         `json:"creator_id" db:"creator_id"`
	Question  string        `json:"question" db:"question"`
	EndsAt    time.Time     `json:"ends_at" db:"ends_at"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	Options   []*PollOption `json:"options"`
}

func (p *Poll) Active(now time.Time) bool {
	return now.Before(p.EndsAt)
}

func (p *Poll) HasOption(optionID int64) bool {
	for _, o := range p.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

type PollOption struct {
	ID     int64  `json:"id" db:"id"`
	PollID int64  `json:"poll_id" db:"poll_id"`
	Text   string `json:"text" db:"option_text"`
}

type PollVote struct {
	ID        int64     `json:"id" db:"id"`
	PollID    int64     `json:"poll_id" db:"poll_id"`
	OptionID  int64     `json:"option_id" db:"option_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type PollOptionResult struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	VoteCount  int     `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

type PollResult struct {
	ID         int64               `json:"id"`
	EventID    int64               `json:"event_id"`
	Question   string              `json:"question"`
	EndsAt     time.Time           `json:"ends_at"`
	Active     bool                `json:"active"`
	TotalVotes int                 `json:"total_votes"`
	Options    []*PollOptionResult `json:"options"`
}

type Question struct {
	ID         int64      `json:"id" db:"id"`
	EventID    int64      `json:"event_id" db:"event_id"`
	AskedBy    int64      `json:"asked_by" db:"asked_by"`
	Question   string     `json:"question" db:"question"`
	Answer     string     `json:"answer,omitempty" db:"answer"`
	AskedAt    time.Time  `json:"asked_at" db:"asked_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty" db:"answered_at"`
}

func (q *Question) Answered() bool {
	return q.AnsweredAt != nil
}
