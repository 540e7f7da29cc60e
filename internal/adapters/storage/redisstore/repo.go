// Package redisstore persists tasks in Redis hashes indexed by one set.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/domain"
)

// indexKey names the set holding every task id.
const indexKey = "tasks"

// legacyTagSeparator joined tags in hashes written before tags were stored as JSON.
const legacyTagSeparator = ","

// Repository stores each task as a hash at `task:<id>`.
type Repository struct {
	client *redis.Client
	prefix string
}

// Option customizes repository construction.
type Option func(*Repository)

// WithKeyPrefix namespaces every key, which lets tests and tenants share one server.
func WithKeyPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = strings.TrimSpace(prefix)
	}
}

// New wraps an existing client.
func New(client *redis.Client, opts ...Option) *Repository {
	if client == nil {
		panic("redisstore.New: client is nil")
	}
	repo := &Repository{client: client}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Open dials Redis and verifies connectivity before returning.
func Open(ctx context.Context, opts *redis.Options, repoOpts ...Option) (*Repository, error) {
	if opts == nil || strings.TrimSpace(opts.Addr) == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, repoOpts...), nil
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

// Ping verifies the server is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.taskKey(t.ID), encodeTask(t))
		pipe.SAdd(ctx, r.key(indexKey), t.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store task %q: %w", t.ID, err)
	}
	return nil
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	fields, err := r.client.HGetAll(ctx, r.taskKey(id)).Result()
	if err != nil {
		return domain.Task{}, fmt.Errorf("load task %q: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Task{}, app.ErrNotFound
	}
	return decodeTask(id, fields), nil
}

// ListTasks lists tasks ordered by creation time.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	ids, err := r.client.SMembers(ctx, r.key(indexKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	out := make([]domain.Task, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.taskKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	for i, cmd := range cmds {
		fields := cmd.Val()
		// Index entries can outlive their hash if a delete was interrupted.
		if len(fields) == 0 {
			continue
		}
		out = append(out, decodeTask(ids[i], fields))
	}
	domain.SortByCreated(out)
	return out, nil
}

// UpdateTaskStatus updates task status.
func (r *Repository) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) error {
	key := r.taskKey(id)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check task %q: %w", id, err)
	}
	if exists == 0 {
		return app.ErrNotFound
	}
	if err := r.client.HSet(ctx, key, "status", string(status)).Err(); err != nil {
		return fmt.Errorf("update task %q: %w", id, err)
	}
	return nil
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.taskKey(id))
		pipe.SRem(ctx, r.key(indexKey), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task %q: %w", id, err)
	}
	if del.Val() == 0 {
		return app.ErrNotFound
	}
	return nil
}

// key applies the configured namespace.
func (r *Repository) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

// taskKey returns the hash key for one task.
func (r *Repository) taskKey(id string) string {
	return r.key("task:" + id)
}

// encodeTask flattens one task into hash fields.
func encodeTask(t domain.Task) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"created_at":  strconv.FormatInt(t.CreatedAt.UTC().UnixNano(), 10),
		"tags":        encodeTags(t.Tags),
	}
}

// encodeTags stores tags as a JSON array so a tag may contain the legacy separator.
func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// decodeTags reads a JSON tag array, falling back to the comma-joined legacy layout.
func decodeTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return domain.NormalizeTags(tags)
		}
	}
	return domain.NormalizeTags(strings.Split(raw, legacyTagSeparator))
}

// decodeTask rebuilds one task from hash fields.
func decodeTask(id string, fields map[string]string) domain.Task {
	t := domain.Task{
		ID:          id,
		Title:       fields["title"],
		Description: fields["description"],
		Status:      domain.Status(fields["status"]),
		Tags:        decodeTags(fields["tags"]),
	}
	if stored := strings.TrimSpace(fields["id"]); stored != "" {
		t.ID = stored
	}
	if !t.Status.Valid() {
		t.Status = domain.StatusTodo
	}
	if raw, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		t.CreatedAt = parseCreatedAt(raw)
	}
	return t
}

// parseCreatedAt accepts unix nanoseconds, or unix seconds written by older clients.
func parseCreatedAt(raw int64) time.Time {
	const secondsCeiling = 1 << 35
	if raw < secondsCeiling {
		return time.Unix(raw, 0).UTC()
	}
	return time.Unix(0, raw).UTC()
}
