package repos

import (
	"craftyard/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ArtisanRepo struct{ DB *sqlx.DB }

func NewArtisanRepo(db *sqlx.DB) *ArtisanRepo { return &ArtisanRepo{DB: db} }

func (r *ArtisanRepo) ByEmail(email string) (*domain.Artisan, error) {
	var a domain.Artisan
	err := r.DB.Get(&a, `SELECT id,email,display_name,password_hash FROM artisans WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtisanRepo) BindSession(sid, artisanID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,artisan_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET artisan_id=excluded.artisan_id,last_seen=CURRENT_TIMESTAMP`, sid, artisanID)
	return err
}

func (r *ArtisanRepo) SessionArtisan(sid string) (*domain.Artisan, error) {
	var a domain.Artisan
	err := r.DB.Get(&a, `
      SELECT a.id,a.email,a.display_name,a.password_hash
      FROM sessions s
      JOIN artisans a ON a.id=s.artisan_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtisanRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET artisan_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}
