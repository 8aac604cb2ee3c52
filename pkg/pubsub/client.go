package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/logger"
)

type Client struct {
	client    *pubsub.Client
	projectID string
	topic     string

	mu        sync.Mutex
	publisher *pubsub.Publisher
}

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub content topic is required")
)

// NewClient creates a Pub/Sub v2 client and ensures the content topic exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.ContentTopic) == "" {
		return nil, errTopicRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		projectID: gcp.ProjectID,
		topic:     cfg.ContentTopic,
	}

	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", c.topicResourceName(c.topic)), "pubsub client initialized")
	}

	return c, nil
}

// Ping verifies the content topic exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	fullName := c.topicResourceName(c.topic)
	if fullName == "" {
		return errTopicRequired
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: fullName})
	if err != nil {
		// v2 uses gRPC errors; NotFound means the topic doesn't exist.
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("topic %q does not exist", c.topic)
		}
		return fmt.Errorf("checking topic %q: %w", c.topic, err)
	}
	return nil
}

// Publish sends one message to the content topic and waits for the server id.
func (c *Client) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	publisher := c.contentPublisher()
	if publisher == nil {
		return "", errors.New("pubsub publisher not initialized")
	}
	result := publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
	return result.Get(ctx)
}

func (c *Client) contentPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publisher == nil {
		fullName := c.topicResourceName(c.topic)
		if fullName == "" {
			return nil
		}
		c.publisher = c.client.Publisher(fullName)
	}
	return c.publisher
}

// Close flushes pending messages and releases the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	if c.publisher != nil {
		c.publisher.Stop()
	}
	c.mu.Unlock()
	return c.client.Close()
}

func (c *Client) topicResourceName(name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(c.projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}
