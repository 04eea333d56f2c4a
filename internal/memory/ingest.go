package memory

import (
	"context"

	"go.uber.org/zap"
)

// IngestItem is one snippet bound for the memory API, fanned out to every
// listed container tag.
type IngestItem struct {
	Content       string   `json:"content"`
	ContainerTags []string `json:"container_tags"`
}

// Ingestor accepts snippets for storage. Implementations must swallow
// upstream failures; a memory write is never allowed to fail a chat request.
type Ingestor interface {
	Enqueue(ctx context.Context, item IngestItem) error
}

// SyncIngestor writes straight through to the memory API. It is the fallback
// when no message broker is configured.
type SyncIngestor struct {
	client *Client
	log    *zap.Logger
}

func NewSyncIngestor(client *Client, log *zap.Logger) *SyncIngestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncIngestor{client: client, log: log}
}

func (s *SyncIngestor) Enqueue(ctx context.Context, item IngestItem) error {
	for _, tag := range item.ContainerTags {
		if err := s.client.Add(ctx, item.Content, tag); err != nil {
			s.log.Warn("memory store failed", zap.String("container_tag", tag), zap.Error(err))
		}
	}
	return nil
}
