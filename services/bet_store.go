// services/bet_store.go
package services

import (
	"errors"
	"fmt"

	"parier-bet-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BetRow is the read model the feed works on: the bet plus everything
// the card renders (author, category, tags, counters, viewer flag).
type BetRow struct {
	Bet      models.Bet
	Author   models.User
	Category models.Category
	Tags     []string

	CommentsCount int64
	BetsCount     int64
	LikesCount    int64
	LikedByMe     bool
}

type CommentRow struct {
	Comment models.BetComment
	Author  models.User

	LikesCount int64
	LikedByMe  bool
}

// BetStore is the single data-access seam for bets. Two interchangeable
// implementations exist: GormBetStore (live) and FixtureBetStore
// (fixture/demo), selected by configuration — fallback behavior is a
// policy, not a try/catch side effect.
type BetStore interface {
	ListBets(categoryID, viewerID string, offset, limit int) ([]BetRow, int64, error)
	GetBet(id, viewerID string) (*BetRow, error)
	CreateBet(bet *models.Bet, tags []string, sourceIDs []string) error
	ToggleLike(betID, userID string, like bool) (liked bool, likesCount int64, err error)
	ListComments(betID, viewerID string, offset, limit int) ([]CommentRow, int64, error)
	CreateComment(comment *models.BetComment) error
	ToggleCommentLike(commentID, userID string, like bool) (liked bool, likesCount int64, err error)
	PlaceBet(betID, userID string, amount float64, predict bool) (*BetRow, error)
}

type GormBetStore struct {
	DB *gorm.DB
}

func NewGormBetStore(db *gorm.DB) *GormBetStore {
	return &GormBetStore{DB: db}
}

func (s *GormBetStore) ListBets(categoryID, viewerID string, offset, limit int) ([]BetRow, int64, error) {
	q := s.DB.Model(&models.Bet{})
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bets []models.Bet
	if err := q.Preload("Tags").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bets).Error; err != nil {
		return nil, 0, err
	}

	rows, err := s.assembleRows(bets, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *GormBetStore) GetBet(id, viewerID string) (*BetRow, error) {
	var bet models.Bet
	if err := s.DB.Preload("Tags").First(&bet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.assembleRows([]models.Bet{bet}, viewerID)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// assembleRows joins authors, categories, and the per-bet counters in
// one grouped query per counter instead of per-row lookups.
func (s *GormBetStore) assembleRows(bets []models.Bet, viewerID string) ([]BetRow, error) {
	if len(bets) == 0 {
		return []BetRow{}, nil
	}

	betIDs := make([]string, 0, len(bets))
	authorIDs := make([]string, 0, len(bets))
	categoryIDs := make([]string, 0, len(bets))
	for _, b := range bets {
		betIDs = append(betIDs, b.ID)
		authorIDs = append(authorIDs, b.AuthorID)
		categoryIDs = append(categoryIDs, b.CategoryID)
	}

	var authors []models.User
	if err := s.DB.Where("external_user_id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[string]models.User, len(authors))
	for _, a := range authors {
		authorByID[a.ExternalUserID] = a
	}

	var categories []models.Category
	if err := s.DB.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return nil, err
	}
	categoryByID := make(map[string]models.Category, len(categories))
	for _, cat := range categories {
		categoryByID[cat.ID] = cat
	}

	likeCounts, err := s.groupCount(&models.BetLike{}, "bet_id", betIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.groupCount(&models.BetComment{}, "bet_id", betIDs)
	if err != nil {
		return nil, err
	}
	betCounts, err := s.groupCount(&models.BetParticipation{}, "bet_id", betIDs)
	if err != nil {
		return nil, err
	}

	likedByViewer := map[string]bool{}
	if viewerID != "" {
		var likes []models.BetLike
		if err := s.DB.Where("author_id = ? AND bet_id IN ?", viewerID, betIDs).Find(&likes).Error; err != nil {
			return nil, err
		}
		for _, l := range likes {
			likedByViewer[l.BetID] = true
		}
	}

	rows := make([]BetRow, len(bets))
	for i, b := range bets {
		tags := make([]string, len(b.Tags))
		for j, t := range b.Tags {
			tags[j] = t.Tag
		}
		rows[i] = BetRow{
			Bet:           b,
			Author:        authorByID[b.AuthorID],
			Category:      categoryByID[b.CategoryID],
			Tags:          tags,
			LikesCount:    likeCounts[b.ID],
			CommentsCount: commentCounts[b.ID],
			BetsCount:     betCounts[b.ID],
			LikedByMe:     likedByViewer[b.ID],
		}
	}
	return rows, nil
}

func (s *GormBetStore) groupCount(model interface{}, fk string, ids []string) (map[string]int64, error) {
	type countRow struct {
		ID    string
		Count int64
	}
	var counts []countRow
	err := s.DB.Model(model).
		Select(fmt.Sprintf("%s AS id, COUNT(*) AS count", fk)).
		Where(fmt.Sprintf("%s IN ?", fk), ids).
		Group(fk).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for _, c := range counts {
		out[c.ID] = c.Count
	}
	return out, nil
}

func (s *GormBetStore) CreateBet(bet *models.Bet, tags []string, sourceIDs []string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bet).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.BetTag{
				ID:    uuid.NewString(),
				BetID: bet.ID,
				Tag:   tag,
			}).Error; err != nil {
				return err
			}
		}
		for _, sourceID := range sourceIDs {
			if err := tx.Create(&models.BetSource{
				ID:       uuid.NewString(),
				BetID:    bet.ID,
				SourceID: sourceID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormBetStore) ToggleLike(betID, userID string, like bool) (bool, int64, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		if err := tx.Select("id").First(&bet, "id = ?", betID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if like {
			// at most one row per (bet, user) — re-likes are no-ops
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.BetLike{
				ID:       uuid.NewString(),
				BetID:    betID,
				AuthorID: userID,
			}).Error
		}
		return tx.Where("bet_id = ? AND author_id = ?", betID, userID).
			Delete(&models.BetLike{}).Error
	})
	if err != nil {
		return false, 0, err
	}

	var count int64
	if err := s.DB.Model(&models.BetLike{}).Where("bet_id = ?", betID).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return like, count, nil
}

func (s *GormBetStore) ListComments(betID, viewerID string, offset, limit int) ([]CommentRow, int64, error) {
	var total int64
	if err := s.DB.Model(&models.BetComment{}).Where("bet_id = ?", betID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.BetComment
	if err := s.DB.Where("bet_id = ?", betID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]CommentRow, len(comments))
	for i, comment := range comments {
		var author models.User
		s.DB.Where("external_user_id = ?", comment.AuthorID).First(&author)

		var likes int64
		if err := s.DB.Model(&models.BetCommentLike{}).Where("comment_id = ?", comment.ID).Count(&likes).Error; err != nil {
			return nil, 0, err
		}

		likedByMe := false
		if viewerID != "" {
			var mine int64
			s.DB.Model(&models.BetCommentLike{}).
				Where("comment_id = ? AND author_id = ?", comment.ID, viewerID).
				Count(&mine)
			likedByMe = mine > 0
		}

		rows[i] = CommentRow{
			Comment:    comment,
			Author:     author,
			LikesCount: likes,
			LikedByMe:  likedByMe,
		}
	}
	return rows, total, nil
}

func (s *GormBetStore) CreateComment(comment *models.BetComment) error {
	var bet models.Bet
	if err := s.DB.Select("id").First(&bet, "id = ?", comment.BetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Create(comment).Error
}

func (s *GormBetStore) ToggleCommentLike(commentID, userID string, like bool) (bool, int64, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var comment models.BetComment
		if err := tx.Select("id").First(&comment, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if like {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.BetCommentLike{
				ID:        uuid.NewString(),
				CommentID: commentID,
				AuthorID:  userID,
			}).Error
		}
		return tx.Where("comment_id = ? AND author_id = ?", commentID, userID).
			Delete(&models.BetCommentLike{}).Error
	})
	if err != nil {
		return false, 0, err
	}

	var count int64
	if err := s.DB.Model(&models.BetCommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return like, count, nil
}

// PlaceBet joins a bet: wallet debit, ledger row, participation, and
// pool increment happen in one DB transaction or not at all.
func (s *GormBetStore) PlaceBet(betID, userID string, amount float64, predict bool) (*BetRow, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bet, "id = ?", betID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if bet.Status != models.BetStatusOpen {
			return validationError("Bet is not open for participation")
		}
		if amount < models.MinBetAmount {
			return validationError(fmt.Sprintf("Minimum bet is %.0f tokens", models.MinBetAmount))
		}
		if amount > bet.Amount {
			return validationError(fmt.Sprintf("Maximum bet is the current pool (%.0f tokens)", bet.Amount))
		}

		var wallet models.TokenWallet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&wallet, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("Insufficient balance")
		}
		if err != nil {
			return err
		}
		if wallet.Balance < amount {
			return validationError("Insufficient balance")
		}

		wallet.Balance -= amount
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.TokenTransaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Type:         models.TxTypeBet,
			Status:       models.TxStatusCompleted,
			Amount:       amount,
			Description:  "Bet placed: " + bet.Title,
			RelatedBetID: &bet.ID,
		}).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.BetParticipation{
			ID:      uuid.NewString(),
			BetID:   betID,
			UserID:  userID,
			Amount:  amount,
			Predict: predict,
		}).Error; err != nil {
			return err
		}

		bet.Amount += amount
		return tx.Save(&bet).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetBet(betID, userID)
}
