package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"craftyard/internal/domain"
	"craftyard/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Artisans *repos.ArtisanRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.Artisan, error) {
	a, err := s.Artisans.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Artisans.BindSession(sid, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Artisans.UnbindSession(sid)
}

// ResolveOwner maps a session token to the artisan who owns it.
func (s *AuthService) ResolveOwner(sid string) (*domain.Artisan, error) {
	return s.Artisans.SessionArtisan(sid)
}
