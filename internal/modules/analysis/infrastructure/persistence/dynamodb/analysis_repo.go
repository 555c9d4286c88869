package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
)

// timeLayout is fixed width so sort keys order chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// API is the subset of the DynamoDB client the repository uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// item is one analysis in the single-table layout: partition "ANALYSIS#<id>",
// sort "TS#<createdAt>".
type item struct {
	PK         string         `dynamodbav:"pk"`
	SK         string         `dynamodbav:"sk"`
	AnalysisID string         `dynamodbav:"analysisId"`
	Bucket     string         `dynamodbav:"bucket"`
	Key        string         `dynamodbav:"key"`
	Provider   string         `dynamodbav:"provider,omitempty"`
	CreatedAt  string         `dynamodbav:"createdAt"`
	Labels     []domain.Label `dynamodbav:"labels"`
}

type DynamoAnalysisRepository struct {
	client API
	table  string
}

// New builds a repository on the default AWS configuration. endpoint, when
// set, points the client at DynamoDB Local or LocalStack.
func New(ctx context.Context, region, endpoint, table string) (*DynamoAnalysisRepository, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewWithClient(client, table), nil
}

func NewWithClient(client API, table string) *DynamoAnalysisRepository {
	return &DynamoAnalysisRepository{client: client, table: table}
}

func partitionKey(id uuid.UUID) string {
	return "ANALYSIS#" + id.String()
}

func (r *DynamoAnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	created := a.CreatedAt.UTC().Format(timeLayout)
	labels := []domain.Label(a.Labels)
	if labels == nil {
		labels = []domain.Label{}
	}

	av, err := attributevalue.MarshalMap(item{
		PK:         partitionKey(a.ID),
		SK:         "TS#" + created,
		AnalysisID: a.ID.String(),
		Bucket:     a.Bucket,
		Key:        a.Key,
		Provider:   a.Provider,
		CreatedAt:  created,
		Labels:     labels,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	return err
}

func (r *DynamoAnalysisRepository) GetLatest(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partitionKey(id)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrAnalysisNotFound
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	parsedID, err := uuid.Parse(it.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("stored analysis has invalid id %q: %w", it.AnalysisID, err)
	}
	created, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("stored analysis has invalid createdAt %q: %w", it.CreatedAt, err)
	}

	labels := domain.Labels(it.Labels)
	if labels == nil {
		labels = domain.Labels{}
	}
	return &domain.Analysis{
		ID:        parsedID,
		Bucket:    it.Bucket,
		Key:       it.Key,
		Provider:  it.Provider,
		Labels:    labels,
		CreatedAt: created,
	}, nil
}
