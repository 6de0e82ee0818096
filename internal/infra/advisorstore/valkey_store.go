package advisorstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/voyora/tripweaver/internal/domain/advisor"
)

// ValkeyStore persists advisor decisions in a Valkey-compatible database so
// identical questions across trips share oracle spend.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "advisor"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements advisor.Store.
func (s *ValkeyStore) Get(ctx context.Context, key string) (advisor.Response, bool, error) {
	if key == "" {
		return advisor.Response{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.entryKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return advisor.Response{}, false, nil
		}
		return advisor.Response{}, false, err
	}
	var res advisor.Response
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return advisor.Response{}, false, err
	}
	return res, true, nil
}

// Save implements advisor.Store.
func (s *ValkeyStore) Save(ctx context.Context, key string, res advisor.Response, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return s.prefix + ":" + key
}

var _ advisor.Store = (*ValkeyStore)(nil)
