package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// PutTracking inserts a new email tracking record.
func (s *Store) PutTracking(ctx context.Context, t *domain.EmailTracking) error {
	av, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshaling tracking record: %w", err)
	}

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.TrackingTable),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting tracking record: %w", err)
	}
	return nil
}

// GetTracking fetches a tracking record by id. Returns (nil, nil) when the
// id is unknown.
func (s *Store) GetTracking(ctx context.Context, trackingID string) (*domain.EmailTracking, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.cfg.TrackingTable),
		Key: map[string]types.AttributeValue{
			"trackingId": &types.AttributeValueMemberS{Value: trackingID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting tracking record %s: %w", trackingID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var t domain.EmailTracking
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, fmt.Errorf("unmarshaling tracking record %s: %w", trackingID, err)
	}
	return &t, nil
}

// MarkOpened flips isOpened on the tracking record. The conditional write
// makes the transition single-shot: the first caller wins and gets
// firstOpen=true, every later open fails the condition and gets false.
func (s *Store) MarkOpened(ctx context.Context, trackingID string, openedAt time.Time) (bool, error) {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.cfg.TrackingTable),
		Key: map[string]types.AttributeValue{
			"trackingId": &types.AttributeValueMemberS{Value: trackingID},
		},
		UpdateExpression:    aws.String("SET isOpened = :opened, openedAt = :at"),
		ConditionExpression: aws.String("isOpened = :notOpened"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":opened":    &types.AttributeValueMemberBOOL{Value: true},
			":notOpened": &types.AttributeValueMemberBOOL{Value: false},
			":at":        &types.AttributeValueMemberS{Value: openedAt.UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var conditional *types.ConditionalCheckFailedException
		if errors.As(err, &conditional) {
			return false, nil
		}
		return false, fmt.Errorf("marking tracking record %s opened: %w", trackingID, err)
	}
	return true, nil
}

// AppendClick appends a click entry to the tracking record's scamClicks
// list, creating the list when absent.
func (s *Store) AppendClick(ctx context.Context, trackingID string, entry domain.ScamClickEntry) error {
	av, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("marshaling click entry: %w", err)
	}

	_, err = s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.cfg.TrackingTable),
		Key: map[string]types.AttributeValue{
			"trackingId": &types.AttributeValueMemberS{Value: trackingID},
		},
		UpdateExpression: aws.String("SET scamClicks = list_append(if_not_exists(scamClicks, :empty), :click)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":click": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: av}}},
		},
	})
	if err != nil {
		return fmt.Errorf("appending click to tracking record %s: %w", trackingID, err)
	}
	return nil
}

// CompanyTracking returns every tracking record belonging to a company,
// via CompanyIndex with scan fallback.
func (s *Store) CompanyTracking(ctx context.Context, companyID string) ([]domain.EmailTracking, error) {
	items, err := s.queryByCompany(ctx, s.cfg.TrackingTable, companyID)
	if err != nil {
		return nil, err
	}

	records := make([]domain.EmailTracking, 0, len(items))
	for _, item := range items {
		var t domain.EmailTracking
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			continue
		}
		records = append(records, t)
	}
	return records, nil
}
