package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
)

// MaxTransactItems is DynamoDB's limit on actions in a single TransactWriteItems call.
const MaxTransactItems = 100

// ErrMutationTooLarge is returned when a mutation does not fit in one DynamoDB transaction.
var ErrMutationTooLarge = errors.New("mutation exceeds the DynamoDB transaction item limit")

// CheckMutationSize reports whether m fits in one TransactWriteItems call.
func CheckMutationSize(m *models.Mutation) error {
	if n := 1 + len(m.PutCredits) + len(m.Append); n > MaxTransactItems {
		return fmt.Errorf("%w: %d items", ErrMutationTooLarge, n)
	}
	return nil
}

// CommitMutation writes the vault, credits and transactions in one TransactWriteItems call.
// The vault put is conditioned on the expected version, so a concurrent writer
// cancels the whole transaction.
func (s *Store) CommitMutation(ctx context.Context, m *models.Mutation) error {
	if err := CheckMutationSize(m); err != nil {
		return err
	}

	items, err := s.buildTransactItems(m)
	if err != nil {
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isConditionFailure(err) {
			return storage.ErrConcurrencyConflict
		}
		return fmt.Errorf("failed to commit mutation for customer %s: %w", m.CustomerID, err)
	}
	return nil
}

func (s *Store) buildTransactItems(m *models.Mutation) ([]types.TransactWriteItem, error) {
	vault := m.Vault
	vault.CustomerID = m.CustomerID
	vaultAV, err := attributevalue.MarshalMap(toVaultItem(vault))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vault: %w", err)
	}

	vaultPut := &types.Put{
		TableName: aws.String(s.VaultsTableName),
		Item:      vaultAV,
	}
	if m.ExpectedVersion == 0 {
		vaultPut.ConditionExpression = aws.String("attribute_not_exists(customer_id)")
	} else {
		vaultPut.ConditionExpression = aws.String("version = :expected")
		vaultPut.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(m.ExpectedVersion, 10)},
		}
	}

	items := []types.TransactWriteItem{{Put: vaultPut}}
	for _, c := range m.PutCredits {
		av, err := attributevalue.MarshalMap(toCreditItem(c))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal credit %s: %w", c.ID, err)
		}
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName: aws.String(s.CreditsTableName),
			Item:      av,
		}})
	}
	for _, t := range m.Append {
		av, err := attributevalue.MarshalMap(toTransactionItem(t))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal transaction %s: %w", t.ID, err)
		}
		// Transactions are append-only.
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(s.TransactionsTableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
		}})
	}
	return items, nil
}

// isConditionFailure reports whether the transaction was cancelled by a failed condition check.
func isConditionFailure(err error) bool {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		var condCheckFailed *types.ConditionalCheckFailedException
		return errors.As(err, &condCheckFailed)
	}
	for _, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
