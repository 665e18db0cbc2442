// Package dynamodb stores memoized plans in an Amazon DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Config contains DynamoDB connection configuration.
type Config struct {
	Region string

	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// Table is the memo table. Its partition key is the string attribute "pk".
	Table string

	// Namespace partitions the table between independent memos.
	Namespace string

	// Timeout bounds each request.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Region:    "us-east-1",
		Table:     "goap_plans",
		Namespace: "default",
		Timeout:   5 * time.Second,
	}
}

// ConfigOption configures the DynamoDB connection.
type ConfigOption func(*Config)

// WithRegion sets the AWS region.
func WithRegion(region string) ConfigOption {
	return func(c *Config) {
		c.Region = region
	}
}

// WithEndpoint sets the service endpoint.
func WithEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithStaticCredentials uses a fixed key pair.
func WithStaticCredentials(id, secret string) ConfigOption {
	return func(c *Config) {
		c.AccessKeyID = id
		c.SecretAccessKey = secret
	}
}

// WithTable sets the table name.
func WithTable(name string) ConfigOption {
	return func(c *Config) {
		c.Table = name
	}
}

// WithNamespace sets the namespace.
func WithNamespace(ns string) ConfigOption {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// NewClient builds a DynamoDB client from the configuration.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// TableAPI is the subset of the DynamoDB client used to create the table.
type TableAPI interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// CreateTable creates the memo table with on-demand billing and waits for it
// to become active. An existing table is not an error.
func CreateTable(ctx context.Context, api TableAPI, table string) error {
	_, err := api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrKey), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrKey), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return err
	}

	return dynamodb.NewTableExistsWaiter(api).Wait(ctx,
		&dynamodb.DescribeTableInput{TableName: aws.String(table)}, 2*time.Minute)
}
