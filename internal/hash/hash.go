package hash

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	PolicyPlain  = "plain"
	PolicyBcrypt = "bcrypt"
)

// Policy decides how a password is stored and compared at login.
type Policy interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
}

func NewPolicy(name string) (Policy, error) {
	switch name {
	case PolicyPlain, "":
		return Plain{}, nil
	case PolicyBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	}
	return nil, fmt.Errorf("unknown password policy %q", name)
}

// Plain keeps the legacy behaviour: passwords are stored in plaintext and
// login succeeds on exact equality. It is the default policy; set
// PASSWORD_POLICY=bcrypt to hash instead. Compare is constant-time but the
// stored value is still the raw password.
type Plain struct{}

func (Plain) Hash(password string) (string, error) {
	return password, nil
}

func (Plain) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func (Bcrypt) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
