package synth

import (
	"strconv"
	"sync"

	"synthchain/core/types"
)

const (
	EventTypeAssetCreated = "synth.asset.created"
	EventTypeMinted       = "synth.minted"
	EventTypeBurned       = "synth.burned"
	EventTypeAssetPaused  = "synth.asset.paused"
	EventTypeAssetResumed = "synth.asset.resumed"
)

// EventEmitter receives the canonical audit record of every state-changing
// operation. Emission happens strictly after the request commits.
type EventEmitter interface {
	Emit(evt *types.Event)
}

// EventLog is the default in-memory emitter used by the daemon and tests.
// Requests against different assets may emit concurrently.
type EventLog struct {
	mu     sync.Mutex
	events []*types.Event
}

func (l *EventLog) Emit(evt *types.Event) {
	if l == nil || evt == nil {
		return
	}
	l.mu.Lock()
	l.events = append(l.events, evt)
	l.mu.Unlock()
}

// Events returns the emitted events in order.
func (l *EventLog) Events() []*types.Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*types.Event(nil), l.events...)
}

// NewAssetCreatedEvent returns the canonical payload for a newly created
// synthetic asset.
func NewAssetCreatedEvent(a *SyntheticAsset) *types.Event {
	attrs := make(map[string]string)
	if a != nil {
		attrs["asset"] = a.Symbol
		attrs["authority"] = a.Authority.String()
		attrs["collateralMint"] = a.CollateralMint
		attrs["syntheticMint"] = a.SyntheticMint
		attrs["name"] = a.Name
		attrs["symbol"] = a.Symbol
		attrs["decimals"] = strconv.FormatUint(uint64(a.Decimals), 10)
		attrs["collateralRatioBps"] = strconv.FormatUint(a.CollateralRatioBps, 10)
		attrs["vault"] = a.Vault().String()
		attrs["createdAt"] = strconv.FormatInt(a.CreatedAt, 10)
	}
	return &types.Event{Type: EventTypeAssetCreated, Attributes: attrs}
}

// NewMintedEvent returns the canonical payload emitted when synthetic units
// are issued against posted collateral.
func NewMintedEvent(a *SyntheticAsset, user string, amount, collateralOffered uint64, rate string) *types.Event {
	attrs := map[string]string{
		"user":             user,
		"amount":           strconv.FormatUint(amount, 10),
		"collateralAmount": strconv.FormatUint(collateralOffered, 10),
	}
	if a != nil {
		attrs["asset"] = a.Symbol
	}
	if rate != "" {
		attrs["rate"] = rate
	}
	return &types.Event{Type: EventTypeMinted, Attributes: attrs}
}

// NewBurnedEvent returns the canonical payload emitted when synthetic units
// are destroyed and collateral released.
func NewBurnedEvent(a *SyntheticAsset, user string, amount, collateralReturned uint64, rate string) *types.Event {
	attrs := map[string]string{
		"user":               user,
		"amount":             strconv.FormatUint(amount, 10),
		"collateralReturned": strconv.FormatUint(collateralReturned, 10),
	}
	if a != nil {
		attrs["asset"] = a.Symbol
	}
	if rate != "" {
		attrs["rate"] = rate
	}
	return &types.Event{Type: EventTypeBurned, Attributes: attrs}
}

// NewPauseEvent returns the payload for an administrative pause toggle.
func NewPauseEvent(a *SyntheticAsset, paused bool) *types.Event {
	eventType := EventTypeAssetPaused
	if !paused {
		eventType = EventTypeAssetResumed
	}
	attrs := make(map[string]string)
	if a != nil {
		attrs["asset"] = a.Symbol
		attrs["totalSupply"] = strconv.FormatUint(a.TotalSupply, 10)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
