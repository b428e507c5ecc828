package repository

import (
	"context"

	"gorm.io/gorm"
)

// gormStore is the production Store backed by gorm/postgres. All repository
// handles share the same *gorm.DB, so a store built inside InTx naturally
// scopes every call to the transaction.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Comments() CommentRepository { return &commentRepository{db: s.db} }

func (s *gormStore) Utilizations() UtilizationRepository { return &utilizationRepository{db: s.db} }

func (s *gormStore) Summaries() SummaryRepository { return &summaryRepository{db: s.db} }

func (s *gormStore) Catalog() CatalogRepository { return &catalogRepository{db: s.db} }

func (s *gormStore) MoralCheckLogs() MoralCheckRepository { return &moralCheckRepository{db: s.db} }

func (s *gormStore) Feedback() FeedbackRepository { return &feedbackRepository{db: s.db} }

func (s *gormStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
