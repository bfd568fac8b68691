package mq

import (
	"context"
	"encoding/json"
	"fmt"
)

type MessageQueue interface {
	Send(ctx context.Context, body string) error
	// Receive long-polls for one message; a nil message means the poll was empty.
	Receive(ctx context.Context, visibilityTimeout int32) (*Message, error)
	Delete(ctx context.Context, msg *Message) error
}

type Message struct {
	Id   string
	Body string
}

// PurgeRequest asks the worker to remove everything left for a deleted account.
type PurgeRequest struct {
	UserId      string `json:"userId"`
	RequestedAt int64  `json:"requestedAt"`
}

func EncodePurgeRequest(req PurgeRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func DecodePurgeRequest(body string) (PurgeRequest, error) {
	var req PurgeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return PurgeRequest{}, fmt.Errorf("decode purge request: %w", err)
	}
	if req.UserId == "" {
		return PurgeRequest{}, fmt.Errorf("decode purge request: missing userId")
	}
	return req, nil
}
