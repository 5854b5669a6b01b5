package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/totegamma/daybook/internal/domain"
)

const channelPrefix = "daybook:user:"

// SignalService fans entry events out through redis pub/sub so every instance can serve them.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func UserChannel(userID string) string {
	return channelPrefix + userID
}

func (s *SignalService) Publish(ctx context.Context, event domain.EntryEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, UserChannel(event.UserID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards the user's events to output until ctx is done. output is never closed here.
func (s *SignalService) Realtime(ctx context.Context, userID string, output chan<- domain.EntryEvent) error {
	pubsub := s.rdb.Subscribe(ctx, UserChannel(userID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event domain.EntryEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(
					ctx, "malformed event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
