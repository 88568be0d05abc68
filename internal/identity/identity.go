// Package identity wraps the Cognito user pool behind a small Provider
// interface so account flows can be tested against an in-memory fake.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrBadCredentials means the username/password pair was rejected.
	ErrBadCredentials = errors.New("identity: incorrect username or password")

	// ErrUserNotFound means no user exists for the given username or email.
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrNotConfirmed means the user exists but has not verified their email.
	ErrNotConfirmed = errors.New("identity: user is not confirmed")

	// ErrDuplicate means a user already exists for the requested
	// username or email.
	ErrDuplicate = errors.New("identity: user already exists")
)

// Account types recognized by the pool's custom user_type attribute.
const (
	TypeIndividual = "individual"
	TypeEnterprise = "enterprise"
)

// Profile is the authenticated user's pool attributes, returned on login.
type Profile struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	UserType         string `json:"userType"`
	Role             string `json:"role"`
	UserStatus       string `json:"userStatus"`
	AdminUsername    string `json:"adminUsername"`
	OrganizationType string `json:"organizationType"`
	OriginalUsername string `json:"originalUsername"`
}

// SignUpInput carries a self-service registration.
type SignUpInput struct {
	Username string
	Password string
	Email    string

	// UserType defaults to individual.
	UserType         string
	OrganizationType string
	AdminUsername    string
	Role             string
}

// PoolUser identifies a user-pool entry.
type PoolUser struct {
	Username string
	Sub      string
	Email    string
}

// EnsureResult reports the outcome of a find-or-create.
type EnsureResult struct {
	PoolUser

	// Existing is true when the email already belonged to a pool user
	// and no new entry was created.
	Existing bool
}

// Provider is the identity-provider surface the account and employee
// flows need.
type Provider interface {
	// Authenticate logs a user in. For enterprise accounts the supplied
	// username is the admin username and is resolved to the pool user
	// carrying it before authentication.
	Authenticate(ctx context.Context, username, password, userType string) (*Profile, error)

	// SignUp registers a new self-service user and returns the pool
	// subject id.
	SignUp(ctx context.Context, in SignUpInput) (string, error)

	// EnsureUser finds the pool user for email, creating one with the
	// platform default password when absent.
	EnsureUser(ctx context.Context, email string) (*EnsureResult, error)
}
