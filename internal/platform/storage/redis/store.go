package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/platform/storage"
)

// Store persists JSON documents in Redis, one key per (workspace, file)
// pair plus a set of workspaces that hold any data.
type Store struct {
	client    redis.UniversalClient
	namespace string
}

func NewStore(client redis.UniversalClient, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) fileKey(fileKey, workspaceID string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, workspaceID, fileKey)
}

func (s *Store) workspacesKey() string {
	return s.namespace + ":workspaces"
}

func (s *Store) Load(ctx context.Context, fileKey, workspaceID string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, s.fileKey(fileKey, workspaceID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("load "+fileKey, err).WithDetail("workspace_id", workspaceID)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, apperrors.NewStorageError("decode "+fileKey, err).WithDetail("workspace_id", workspaceID)
	}
	return true, nil
}

func (s *Store) Save(ctx context.Context, fileKey, workspaceID string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewStorageError("encode "+fileKey, err).WithDetail("workspace_id", workspaceID)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.fileKey(fileKey, workspaceID), data, 0)
	pipe.SAdd(ctx, s.workspacesKey(), workspaceID)

	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewStorageError("save "+fileKey, err).WithDetail("workspace_id", workspaceID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, fileKey, workspaceID string) error {
	if err := s.client.Del(ctx, s.fileKey(fileKey, workspaceID)).Err(); err != nil {
		return apperrors.NewStorageError("delete "+fileKey, err).WithDetail("workspace_id", workspaceID)
	}
	return nil
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.workspacesKey()).Result()
	if err != nil {
		return nil, apperrors.NewStorageError("list workspaces", err)
	}
	return members, nil
}
