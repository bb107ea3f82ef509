package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ListCustomers scans the vaults table for customer IDs.
func (s *Store) ListCustomers(ctx context.Context) ([]string, error) {
	var ids []string
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.VaultsTableName),
			ProjectionExpression: aws.String("customer_id"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan vaults table: %w", err)
		}

		var page []struct {
			CustomerID string `dynamodbav:"customer_id"`
		}
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vaults: %w", err)
		}
		for _, p := range page {
			ids = append(ids, p.CustomerID)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sort.Strings(ids)
	return ids, nil
}
