package domain

// AccountType distinguishes the three kinds of platform accounts.
type AccountType string

const (
	AccountIndividual AccountType = "individual"
	AccountEnterprise AccountType = "enterprise"
	AccountEmployee   AccountType = "employee"
)

// User mirrors an identity-provider account in the document store. The
// UserID is the identity provider's subject for the account; it never
// changes even if the email is re-linked.
type User struct {
	UserID          string      `json:"userId" dynamodbav:"userId"`
	AccountType     AccountType `json:"accountType" dynamodbav:"accountType"`
	CompanyID       string      `json:"companyId,omitempty" dynamodbav:"companyId,omitempty"`
	Email           string      `json:"email" dynamodbav:"email"`
	EmployeeID      string      `json:"employeeId,omitempty" dynamodbav:"employeeId,omitempty"`
	CognitoUsername string      `json:"cognitoUsername" dynamodbav:"cognitoUsername"`
	CreatedAt       string      `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
}

// Company is an enterprise tenant. The company id doubles as the admin
// username chosen at enterprise registration; it is upserted, not versioned.
type Company struct {
	CompanyID string `json:"companyId" dynamodbav:"companyId"`
	Domain    string `json:"domain,omitempty" dynamodbav:"domain,omitempty"`
}

// CompanyCode is a pre-issued enterprise verification code.
type CompanyCode struct {
	Code   string `json:"code" dynamodbav:"code"`
	Status string `json:"status" dynamodbav:"status"`
}

// CodeStatus values returned by the verify-code operation.
const (
	CodeValid    = "valid"
	CodeInvalid  = "invalid"
	CodeNotFound = "not_found"
)
