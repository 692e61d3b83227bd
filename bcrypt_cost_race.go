//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// passwordHashCost keeps race-enabled test runs from spending seconds per
// hash. Production builds use the cost in bcrypt_cost.go.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
