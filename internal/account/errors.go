package account

import "errors"

var (
	// ErrDuplicateEmployee means the company already has an employee
	// with the email.
	ErrDuplicateEmployee = errors.New("account: employee with this email already exists")

	// ErrIdentityFailed means the identity provider rejected or failed
	// the provisioning call. Surfaced to clients as a bad-gateway.
	ErrIdentityFailed = errors.New("account: identity provider failure")
)
