package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// PutUser inserts a user record, failing if one already exists for the
// same identity-provider subject.
func (s *Store) PutUser(ctx context.Context, u *domain.User) error {
	av, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.cfg.UsersTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err != nil {
		return fmt.Errorf("putting user: %w", err)
	}
	return nil
}

// UpsertUser writes a user record, relinking the mutable attributes when a
// record for the subject already exists. Employee-add re-runs go through
// here, so a re-added employee keeps its userId but picks up the new
// company/employee linkage.
func (s *Store) UpsertUser(ctx context.Context, u *domain.User) error {
	err := s.PutUser(ctx, u)
	if err == nil {
		return nil
	}

	var condErr *types.ConditionalCheckFailedException
	if !errors.As(err, &condErr) {
		return err
	}

	_, err = s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.cfg.UsersTable),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: u.UserID},
		},
		UpdateExpression: aws.String("SET accountType = :t, companyId = :c, email = :e, employeeId = :eid, cognitoUsername = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberS{Value: string(u.AccountType)},
			":c":   &types.AttributeValueMemberS{Value: u.CompanyID},
			":e":   &types.AttributeValueMemberS{Value: u.Email},
			":eid": &types.AttributeValueMemberS{Value: u.EmployeeID},
			":u":   &types.AttributeValueMemberS{Value: u.CognitoUsername},
		},
	})
	if err != nil {
		return fmt.Errorf("relinking user %s: %w", u.UserID, err)
	}
	return nil
}

// PutCompany upserts a company record. Companies are not versioned; the
// last write wins.
func (s *Store) PutCompany(ctx context.Context, c *domain.Company) error {
	av, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshaling company: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.CompaniesTable),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting company: %w", err)
	}
	return nil
}

// GetCompanyCode looks up a verification code with a consistent read.
// Returns (nil, nil) when the code does not exist.
func (s *Store) GetCompanyCode(ctx context.Context, code string) (*domain.CompanyCode, error) {
	result, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.CompanyCodesTable),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting company code: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var cc domain.CompanyCode
	if err := attributevalue.UnmarshalMap(result.Item, &cc); err != nil {
		return nil, fmt.Errorf("unmarshaling company code: %w", err)
	}
	return &cc, nil
}
