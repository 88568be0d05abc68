package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// PutScamClick records one click event in the denormalized click log. Each
// click is its own immutable item so report aggregation never has to walk
// tracking-record lists.
func (s *Store) PutScamClick(ctx context.Context, c *domain.ScamClick) error {
	av, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshaling scam click: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.ScamClicksTable),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting scam click: %w", err)
	}
	return nil
}

// CompanyClicks returns every click event for a company, via CompanyIndex
// with scan fallback.
func (s *Store) CompanyClicks(ctx context.Context, companyID string) ([]domain.ScamClick, error) {
	items, err := s.queryByCompany(ctx, s.cfg.ScamClicksTable, companyID)
	if err != nil {
		return nil, err
	}

	clicks := make([]domain.ScamClick, 0, len(items))
	for _, item := range items {
		var c domain.ScamClick
		if err := attributevalue.UnmarshalMap(item, &c); err != nil {
			continue
		}
		clicks = append(clicks, c)
	}
	return clicks, nil
}
