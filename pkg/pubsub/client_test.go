package pubsub

import (
	"context"
	"testing"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "site-prod"}
	tests := []struct {
		in   string
		want string
	}{
		{in: "content-changes", want: "projects/site-prod/topics/content-changes"},
		{in: " content-changes ", want: "projects/site-prod/topics/content-changes"},
		{in: "projects/other/topics/content-changes", want: "projects/other/topics/content-changes"},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := c.topicResourceName(tc.in); got != tc.want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	var nilClient *Client
	if got := nilClient.topicResourceName("x"); got != "" {
		t.Fatalf("expected empty name for nil client, got %q", got)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected Ping on nil client to fail")
	}
}
