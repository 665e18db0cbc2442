package dynamodb

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/felixgeelhaar/goap/domain/cache"
)

const (
	attrKey     = "pk"
	attrExpires = "expires_at"
)

// API is the subset of the DynamoDB client used by Cache.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type item struct {
	Key       string `dynamodbav:"pk"`
	Value     []byte `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expires_at,omitempty"` // epoch seconds, usable as the table TTL attribute
}

// Cache is a DynamoDB implementation of cache.Cache. Items are stored under
// "<namespace>#<key>".
type Cache struct {
	api       API
	table     string
	namespace string
	timeout   time.Duration
	now       func() time.Time
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache connects with the given configuration.
func NewCache(ctx context.Context, cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}
	return NewCacheFromAPI(client, cfg), nil
}

// NewCacheFromAPI uses an existing client.
func NewCacheFromAPI(api API, cfg Config) *Cache {
	return &Cache{
		api:       api,
		table:     cfg.Table,
		namespace: cfg.Namespace,
		timeout:   cfg.Timeout,
		now:       time.Now,
	}
}

func (c *Cache) pk(key string) string {
	return c.namespace + "#" + key
}

func (c *Cache) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: c.pk(key)},
	}
}

func (c *Cache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Cache) live(it item) bool {
	return it.ExpiresAt == 0 || c.now().Unix() < it.ExpiresAt
}

// Get retrieves a live value. DynamoDB TTL deletion is lazy, so expiry is
// also checked here.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            c.keyAttr(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, wrapError(err)
	}
	if out.Item == nil {
		c.misses.Add(1)
		return nil, false, nil
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, false, err
	}
	if !c.live(it) {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return it.Value, true, nil
}

// Set stores a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	it := item{Key: c.pk(key), Value: value}
	if opts.TTL > 0 {
		it.ExpiresAt = c.now().Add(opts.TTL).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	})
	return wrapError(err)
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.table),
		Key:       c.keyAttr(key),
	})
	return wrapError(err)
}

// Exists reports whether key holds a live value.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(attrKey), expression.Name(attrExpires))).
		Build()
	if err != nil {
		return false, err
	}

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(c.table),
		Key:                      c.keyAttr(key),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return false, wrapError(err)
	}
	if out.Item == nil {
		return false, nil
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return false, err
	}
	return c.live(it), nil
}

// Clear scans the namespace and deletes every item in it.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := c.namespace + "#"
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name(attrKey).BeginsWith(prefix)).
		WithProjection(expression.NamesList(expression.Name(attrKey))).
		Build()
	if err != nil {
		return err
	}

	pages := dynamodb.NewScanPaginator(c.api, &dynamodb.ScanInput{
		TableName:                 aws.String(c.table),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return wrapError(err)
		}
		for _, av := range page.Items {
			var it item
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return err
			}
			if !strings.HasPrefix(it.Key, prefix) {
				continue
			}
			if err := c.Delete(ctx, strings.TrimPrefix(it.Key, prefix)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return errors.Join(cache.ErrConnectionFailed, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
