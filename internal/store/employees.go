package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/thinkbeforeclick/platform/internal/domain"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
)

// PutEmployee inserts an employee record with zeroed counters.
func (s *Store) PutEmployee(ctx context.Context, e *domain.Employee) error {
	av, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshaling employee: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.EmployeesTable),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting employee: %w", err)
	}
	return nil
}

// FindEmployeeByEmail scans for an employee with the given email inside a
// company. This is a check-then-insert duplicate guard, not a uniqueness
// constraint: two concurrent adds can both pass it (accepted race).
func (s *Store) FindEmployeeByEmail(ctx context.Context, companyID, email string) (*domain.Employee, error) {
	paginator := dynamodb.NewScanPaginator(s.db, &dynamodb.ScanInput{
		TableName:        aws.String(s.cfg.EmployeesTable),
		FilterExpression: aws.String("companyId = :company AND email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":company": &types.AttributeValueMemberS{Value: companyID},
			":email":   &types.AttributeValueMemberS{Value: email},
		},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning employees: %w", err)
		}
		for _, item := range page.Items {
			var e domain.Employee
			if err := attributevalue.UnmarshalMap(item, &e); err != nil {
				continue
			}
			return &e, nil
		}
	}
	return nil, nil
}

// CompanyEmployees returns all employees of a company via the CompanyIndex
// GSI, falling back to a filtered scan when the index query fails (the
// index may not exist on older deployments).
func (s *Store) CompanyEmployees(ctx context.Context, companyID string) ([]domain.Employee, error) {
	items, err := s.queryByCompany(ctx, s.cfg.EmployeesTable, companyID)
	if err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(items))
	for _, item := range items {
		var e domain.Employee
		if err := attributevalue.UnmarshalMap(item, &e); err != nil {
			continue
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// Employee counter mutations. ADD is atomic per item, so concurrent events
// for the same employee never lose increments.

// IncrementSent bumps the employee's sentEmails counter by one.
func (s *Store) IncrementSent(ctx context.Context, employeeID string) error {
	return s.addCounter(ctx, employeeID, "sentEmails")
}

// IncrementOpened bumps the employee's openedEmails counter by one.
func (s *Store) IncrementOpened(ctx context.Context, employeeID string) error {
	return s.addCounter(ctx, employeeID, "openedEmails")
}

// IncrementClicked bumps the employee's clickedScams counter by one.
func (s *Store) IncrementClicked(ctx context.Context, employeeID string) error {
	return s.addCounter(ctx, employeeID, "clickedScams")
}

func (s *Store) addCounter(ctx context.Context, employeeID, attr string) error {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.cfg.EmployeesTable),
		Key: map[string]types.AttributeValue{
			"employeeId": &types.AttributeValueMemberS{Value: employeeID},
		},
		UpdateExpression: aws.String(fmt.Sprintf("ADD %s :inc", attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return fmt.Errorf("incrementing %s for employee %s: %w", attr, employeeID, err)
	}
	return nil
}

// queryByCompany queries a table's CompanyIndex GSI, with a full-scan
// fallback on query failure.
func (s *Store) queryByCompany(ctx context.Context, table, companyID string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	queryPager := dynamodb.NewQueryPaginator(s.db, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(s.cfg.CompanyIndex),
		KeyConditionExpression: aws.String("companyId = :company"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":company": &types.AttributeValueMemberS{Value: companyID},
		},
	})

	var queryErr error
	for queryPager.HasMorePages() {
		page, err := queryPager.NextPage(ctx)
		if err != nil {
			queryErr = err
			break
		}
		items = append(items, page.Items...)
	}
	if queryErr == nil {
		return items, nil
	}

	logger.Warn("company index query failed, falling back to scan",
		"table", table, "company", companyID, "error", queryErr)

	items = items[:0]
	scanPager := dynamodb.NewScanPaginator(s.db, &dynamodb.ScanInput{
		TableName:        aws.String(table),
		FilterExpression: aws.String("companyId = :company"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":company": &types.AttributeValueMemberS{Value: companyID},
		},
	})
	for scanPager.HasMorePages() {
		page, err := scanPager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
