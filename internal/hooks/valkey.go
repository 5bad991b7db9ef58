package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ChangeEvent is the message published for every value set.
type ChangeEvent struct {
	OwnerType string    `json:"owner_type"`
	OwnerID   string    `json:"owner_id"`
	Key       string    `json:"key"`
	Type      string    `json:"type"`
	Value     any       `json:"value"`
	Created   bool      `json:"created"`
	At        time.Time `json:"at"`
}

// ValkeyHook publishes change events on a Valkey pub/sub channel.
type ValkeyHook struct {
	client  valkey.Client
	channel string
}

// NewValkeyHook connects to addr and verifies the connection with PING.
func NewValkeyHook(addr, channel string) (*ValkeyHook, error) {
	if addr == "" {
		return nil, fmt.Errorf("valkey address is required for the valkey hook")
	}
	if channel == "" {
		return nil, fmt.Errorf("valkey channel is required for the valkey hook")
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	slog.Info("Initialized Valkey change publisher", "address", addr, "channel", channel)
	return &ValkeyHook{client: client, channel: channel}, nil
}

func (h *ValkeyHook) OnValueSet(ctx context.Context, ev ValueSetEvent) error {
	payload, err := json.Marshal(newChangeEvent(ev, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	cmd := h.client.B().Publish().Channel(h.channel).Message(string(payload)).Build()
	if err := h.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Close closes the Valkey client.
func (h *ValkeyHook) Close() error {
	h.client.Close()
	return nil
}

func newChangeEvent(ev ValueSetEvent, at time.Time) ChangeEvent {
	return ChangeEvent{
		OwnerType: ev.Owner.ConfigurableType(),
		OwnerID:   ev.Owner.ConfigurableID(),
		Key:       ev.Key,
		Type:      ev.Type.String(),
		Value:     ev.Type.Storable(ev.Value),
		Created:   ev.Created,
		At:        at,
	}
}
