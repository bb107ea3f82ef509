package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
)

// maxLoadAttempts bounds how often LoadLedger retries when a commit lands between its reads.
const maxLoadAttempts = 3

// LoadLedger reads the customer's vault, credits and transactions.
// The three reads are not one DynamoDB transaction, so the vault version is read
// before and after the queries and the load is retried if it moved.
func (s *Store) LoadLedger(ctx context.Context, customerID string) (*models.Ledger, error) {
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		before, err := s.getVault(ctx, customerID)
		if err != nil {
			return nil, err
		}

		credits, err := s.queryCredits(ctx, customerID)
		if err != nil {
			return nil, err
		}
		transactions, err := s.queryTransactions(ctx, customerID)
		if err != nil {
			return nil, err
		}

		after, err := s.getVault(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if after.Version == before.Version {
			return &models.Ledger{Vault: after, Credits: credits, Transactions: transactions}, nil
		}
	}
	return nil, fmt.Errorf("vault for customer %s kept changing during load: %w", customerID, storage.ErrConcurrencyConflict)
}

func (s *Store) getVault(ctx context.Context, customerID string) (models.EnergyVault, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.VaultsTableName),
		Key: map[string]types.AttributeValue{
			"customer_id": &types.AttributeValueMemberS{Value: customerID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.EnergyVault{}, fmt.Errorf("failed to get vault from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return models.EnergyVault{CustomerID: customerID}, nil
	}

	var item vaultItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return models.EnergyVault{}, fmt.Errorf("failed to unmarshal vault: %w", err)
	}
	return item.toModel()
}

func (s *Store) queryCredits(ctx context.Context, customerID string) ([]models.EnergyCredit, error) {
	var items []creditItem
	if err := s.queryPartition(ctx, s.CreditsTableName, customerID, &items); err != nil {
		return nil, fmt.Errorf("failed to query credits: %w", err)
	}

	credits := make([]models.EnergyCredit, 0, len(items))
	for _, item := range items {
		c, err := item.toModel()
		if err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	sort.SliceStable(credits, func(i, j int) bool { return credits[i].IssuedAt.Before(credits[j].IssuedAt) })
	return credits, nil
}

func (s *Store) queryTransactions(ctx context.Context, customerID string) ([]models.EnergyTransaction, error) {
	var items []transactionItem
	if err := s.queryPartition(ctx, s.TransactionsTableName, customerID, &items); err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	txs := make([]models.EnergyTransaction, 0, len(items))
	for _, item := range items {
		t, err := item.toModel()
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Sequence < txs[j].Sequence })
	return txs, nil
}

// queryPartition reads every item under the customer's partition key, following pagination.
func (s *Store) queryPartition(ctx context.Context, table, customerID string, out interface{}) error {
	var all []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("customer_id = :customer_id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":customer_id": &types.AttributeValueMemberS{Value: customerID},
			},
			ConsistentRead:    aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return err
		}
		all = append(all, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(all, out); err != nil {
		return fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return nil
}
