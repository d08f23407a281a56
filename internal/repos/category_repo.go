package repos

import (
	"craftyard/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `SELECT id,name FROM categories ORDER BY name`)
	return out, err
}
