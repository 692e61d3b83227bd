//go:build !race

package auth

// passwordHashCost returns the bcrypt work factor used in production builds.
func passwordHashCost() int {
	return 14
}
