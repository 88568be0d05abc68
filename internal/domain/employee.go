package domain

// Employee is a training target inside a company. The three counters are
// best-effort mirrors of counts derivable from EmailTracking/ScamClick
// records: they are bumped on each event, never recomputed, so they can
// drift if a sibling write fails partway (accepted, fail-forward).
type Employee struct {
	EmployeeID   string `json:"employeeId" dynamodbav:"employeeId"`
	CompanyID    string `json:"companyId" dynamodbav:"companyId"`
	Name         string `json:"name" dynamodbav:"name"`
	Email        string `json:"email" dynamodbav:"email"`
	AddedAt      string `json:"addedAt" dynamodbav:"addedAt"`
	SentEmails   int    `json:"sentEmails" dynamodbav:"sentEmails"`
	OpenedEmails int    `json:"openedEmails" dynamodbav:"openedEmails"`
	ClickedScams int    `json:"clickedScams" dynamodbav:"clickedScams"`
}
