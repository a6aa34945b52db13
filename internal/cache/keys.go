package cache

import (
	"context"
	"fmt"
	"time"
)

// Key formats.
const (
	PostKeyPrefix    = "post:%d"
	ThreadKeyPrefix  = "thread:%d"
	SubmoltKeyPrefix = "submolt:%s"
	AgentKeyPrefix   = "agent:%s"
)

// TTLs. Thread aggregates change on every reply, so they expire fast.
const (
	PostTTL    = 10 * time.Minute
	ThreadTTL  = 1 * time.Minute
	SubmoltTTL = 30 * time.Minute
	AgentTTL   = 10 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ThreadKey(rootPostID uint) string {
	return fmt.Sprintf(ThreadKeyPrefix, rootPostID)
}

func SubmoltKey(name string) string {
	return fmt.Sprintf(SubmoltKeyPrefix, name)
}

func AgentKey(agentID string) string {
	return fmt.Sprintf(AgentKeyPrefix, agentID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateThread(ctx context.Context, rootPostID uint) {
	Invalidate(ctx, ThreadKey(rootPostID))
}
