package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/pingme/pingme-server"
)

// Redis channels carrying best-effort signals. Consumers are external
// (metrics, future multi-instance fan-out); nothing in the live path
// depends on them.
const (
	SignalChannelPresence = "pingme:presence"
	SignalChannelMessages = "pingme:messages"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event pingme.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}
