//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// Hashing at production cost makes race-enabled suites crawl.
	return bcrypt.DefaultCost
}
