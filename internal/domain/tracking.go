package domain

// ScamClickEntry is one click appended to a tracking record's click list.
// Repeated clicks of the same scam type are all recorded; there is no
// deduplication by design.
type ScamClickEntry struct {
	ScamType  string `json:"scamType" dynamodbav:"scamType"`
	ClickedAt string `json:"clickedAt" dynamodbav:"clickedAt"`
}

// EmailTracking correlates one dispatched simulation email with its later
// engagement events. IsOpened transitions false->true exactly once;
// ScamClicks is append-only.
type EmailTracking struct {
	TrackingID    string           `json:"trackingId" dynamodbav:"trackingId"`
	CompanyID     string           `json:"companyId" dynamodbav:"companyId"`
	EmployeeID    string           `json:"employeeId" dynamodbav:"employeeId"`
	EmployeeName  string           `json:"employeeName,omitempty" dynamodbav:"employeeName,omitempty"`
	EmployeeEmail string           `json:"employeeEmail" dynamodbav:"employeeEmail"`
	TemplateID    string           `json:"templateId" dynamodbav:"templateId"`
	EmailSentAt   string           `json:"emailSentAt" dynamodbav:"emailSentAt"`
	IsOpened      bool             `json:"isOpened" dynamodbav:"isOpened"`
	OpenedAt      string           `json:"openedAt,omitempty" dynamodbav:"openedAt,omitempty"`
	ScamClicks    []ScamClickEntry `json:"scamClicks" dynamodbav:"scamClicks"`
}

// ScamClick is an immutable per-click event record. Company, employee and
// template identifiers are denormalized from the tracking record so report
// aggregation never has to join back through it.
type ScamClick struct {
	ClickID      string `json:"clickId" dynamodbav:"clickId"`
	TrackingID   string `json:"trackingId" dynamodbav:"trackingId"`
	CompanyID    string `json:"companyId" dynamodbav:"companyId"`
	EmployeeID   string `json:"employeeId" dynamodbav:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty" dynamodbav:"employeeName,omitempty"`
	TemplateID   string `json:"templateId" dynamodbav:"templateId"`
	ScamType     string `json:"scamType" dynamodbav:"scamType"`
	ClickedAt    string `json:"clickedAt" dynamodbav:"clickedAt"`
}
