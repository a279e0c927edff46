package helpers

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies credentials with bcrypt.
// The zero value uses bcrypt.DefaultCost.
type PasswordHasher struct {
	Cost int
}

// Hash hashes the plain text password using bcrypt
func (h PasswordHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches the bcrypt hash
func (h PasswordHasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
