// models/bet.go
package models

import (
	"time"
)

const (
	BetStatusOpen      = "open"
	BetStatusClosed    = "closed"
	BetStatusCompleted = "completed"
	BetStatusCancelled = "cancelled"
)

// MinBetAmount is the floor for joining a bet.
const MinBetAmount = 10.0

type Bet struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	AuthorID string `json:"author_id" gorm:"type:uuid;index;not null"`

	Title            string `json:"title" gorm:"not null"`
	Slug             string `json:"slug" gorm:"index"` // share-link slug derived from title
	ShortDescription string `json:"short_description"`
	FullDescription  string `json:"full_description"`
	Outcome          string `json:"outcome"`

	CategoryID string `json:"category_id" gorm:"index;not null"`
	TypeID     string `json:"type_id" gorm:"index"`

	// 💰 Pool & payout
	Amount      float64 `json:"amount" gorm:"not null"`      // aggregate staked pool
	Coefficient float64 `json:"coefficient" gorm:"not null"` // payout multiplier

	Status             string     `json:"status" gorm:"default:'open';index"` // open | closed | completed | cancelled
	Deadline           time.Time  `json:"deadline" gorm:"not null"`
	EventDate          *time.Time `json:"event_date,omitempty"`
	Location           string     `json:"location,omitempty"`
	VerificationSource string     `json:"verification_source,omitempty"`

	// 🔗 Children
	Tags           []BetTag            `json:"tags,omitempty" gorm:"foreignKey:BetID"`
	Sources        []BetSource         `json:"sources,omitempty" gorm:"foreignKey:BetID"`
	Comments       []BetComment        `json:"comments,omitempty" gorm:"foreignKey:BetID"`
	Likes          []BetLike           `json:"likes,omitempty" gorm:"foreignKey:BetID"`
	Participations []BetParticipation  `json:"participations,omitempty" gorm:"foreignKey:BetID"`

	Timestamps
}

// PotentialWinnings is derived at read time, never stored.
func (b *Bet) PotentialWinnings() float64 {
	return b.Amount * b.Coefficient
}

type BetTag struct {
	ID    string `json:"id" gorm:"primaryKey;type:uuid"`
	BetID string `json:"bet_id" gorm:"type:uuid;index;not null"`
	Tag   string `json:"tag" gorm:"not null"`
}

// BetSource links a bet to a verification source dictionary entry.
type BetSource struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	BetID    string `json:"bet_id" gorm:"type:uuid;index;not null"`
	SourceID string `json:"source_id" gorm:"not null"`
}

// BetLike — at most one row per (bet, author); counts are derived.
// Unlike removes the row outright so the unique index never collides
// on a re-like.
type BetLike struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	BetID    string `json:"bet_id" gorm:"type:uuid;index:idx_bet_like,unique;not null"`
	AuthorID string `json:"author_id" gorm:"type:uuid;index:idx_bet_like,unique;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BetComment — append-only; never edited or deleted through the API.
type BetComment struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	BetID    string `json:"bet_id" gorm:"type:uuid;index;not null"`
	AuthorID string `json:"author_id" gorm:"type:uuid;not null"`
	Content  string `json:"content" gorm:"type:text;not null"`

	Likes []BetCommentLike `json:"likes,omitempty" gorm:"foreignKey:CommentID"`

	Timestamps
}

type BetCommentLike struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	CommentID string `json:"comment_id" gorm:"type:uuid;index:idx_comment_like,unique;not null"`
	AuthorID  string `json:"author_id" gorm:"type:uuid;index:idx_comment_like,unique;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BetParticipation — a user joining a bet with a staked amount and a side.
type BetParticipation struct {
	ID      string  `json:"id" gorm:"primaryKey;type:uuid"`
	BetID   string  `json:"bet_id" gorm:"type:uuid;index;not null"`
	UserID  string  `json:"user_id" gorm:"type:uuid;index;not null"`
	Amount  float64 `json:"amount" gorm:"not null"`
	Predict bool    `json:"predict" gorm:"not null"` // true = outcome will happen

	Timestamps
}
