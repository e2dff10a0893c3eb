package domain

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a moviegoer account. Accounts are provisioned outside this service;
// here they are only read to open sessions and own bookings.
type User struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Password  Password
	CreatedAt time.Time
	Activated bool
}

// Password holds a bcrypt hash.
type Password struct {
	Hash []byte
}

func (p Password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.Hash, []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetById(ctx context.Context, id int) (*User, error)
}
