package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/energy-vault/pkg/storage"
)

//go:generate mockery --name=DynamoDBAPI --output=mocks --outpkg=mocks

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the ledger storage interfaces using AWS DynamoDB.
//
// Vaults are keyed by customer_id. Credits and transactions share the customer_id
// partition key with credit_id and transaction_id as sort keys, so a customer's ledger
// is read with two queries.
type Store struct {
	Client                        DynamoDBAPI
	VaultsTableName               string
	CreditsTableName              string
	TransactionsTableName         string
	WebsocketConnectionsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, vaultsTable, creditsTable, transactionsTable, connectionsTable string) *Store {
	return &Store{
		Client:                        client,
		VaultsTableName:               vaultsTable,
		CreditsTableName:              creditsTable,
		TransactionsTableName:         transactionsTable,
		WebsocketConnectionsTableName: connectionsTable,
	}
}

// Make sure we conform to the interfaces
var (
	_ storage.CreditStore        = (*Store)(nil)
	_ storage.ConnectionRegistry = (*Store)(nil)
)
