package permissions

import (
	"context"
	"errors"
)

// Device capabilities needed before the media picker may open.
type Capability string

const (
	CapStorageRead  Capability = "storage_read"
	CapStorageWrite Capability = "storage_write"
	CapCamera       Capability = "camera"
)

// Status of a single capability as reported by the device.
type Status int

const (
	StatusGranted Status = iota
	StatusDenied
	// StatusBlocked means the user must flip the switch in the system
	// settings app; requesting again is pointless.
	StatusBlocked
)

// Negotiation states. AllGranted and Blocked are terminal.
type State string

const (
	StateChecking     State = "checking"
	StateNeedsRequest State = "needs_request"
	StateRequesting   State = "requesting"
	StateAllGranted   State = "all_granted"
	StateBlocked      State = "blocked"
	StateRetryPrompt  State = "retry_prompt"
)

var transitions = map[State]map[State]struct{}{
	StateChecking:     {StateAllGranted: {}, StateNeedsRequest: {}, StateBlocked: {}},
	StateNeedsRequest: {StateRequesting: {}},
	StateRequesting:   {StateAllGranted: {}, StateRetryPrompt: {}},
	StateRetryPrompt:  {StateChecking: {}},
	StateAllGranted:   {},
	StateBlocked:      {},
}

// CanTransition returns whether the negotiation may move between two states.
func CanTransition(from, to State) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Device is the platform side of the negotiation: capability checks, the
// system permission dialog, the retry prompt and the settings round trip.
type Device interface {
	Check(ctx context.Context, cap Capability) (Status, error)
	Request(ctx context.Context, caps []Capability) (map[Capability]Status, error)
	// PromptRetry shows the "try again / cancel" dialog and reports the
	// user's choice.
	PromptRetry(ctx context.Context, denied []Capability) (bool, error)
	// OpenSettings sends the user to the system settings app. The caller
	// cannot observe the round trip completing.
	OpenSettings(ctx context.Context) error
}

// Negotiator drives the permission state machine against a Device. One
// negotiation is one call to Acquire; the zero value is not usable.
type Negotiator struct {
	Device Device

	state State
}

func NewNegotiator(device Device) *Negotiator {
	return &Negotiator{Device: device, state: StateChecking}
}

// State returns the current negotiation state.
func (n *Negotiator) State() State {
	return n.state
}

func (n *Negotiator) step(to State) error {
	if !CanTransition(n.state, to) {
		return errors.New("permissions: invalid negotiation transition")
	}
	n.state = to
	return nil
}

// Acquire loops until every capability is granted, any capability is
// reported blocked, or the user cancels a retry prompt. There is no timeout:
// the user keeps control of the loop, mirroring a consent dialog. Returns
// false the moment a blocked status is seen, without issuing further
// requests.
func (n *Negotiator) Acquire(ctx context.Context, caps []Capability) (bool, error) {
	if n.Device == nil {
		return false, errors.New("permissions: no device")
	}
	n.state = StateChecking

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		var denied []Capability
		for _, cap := range caps {
			status, err := n.Device.Check(ctx, cap)
			if err != nil {
				return false, err
			}
			if status == StatusBlocked {
				if err := n.step(StateBlocked); err != nil {
					return false, err
				}
				_ = n.Device.OpenSettings(ctx)
				return false, nil
			}
			if status != StatusGranted {
				denied = append(denied, cap)
			}
		}

		if len(denied) == 0 {
			if err := n.step(StateAllGranted); err != nil {
				return false, err
			}
			return true, nil
		}

		if err := n.step(StateNeedsRequest); err != nil {
			return false, err
		}
		if err := n.step(StateRequesting); err != nil {
			return false, err
		}
		results, err := n.Device.Request(ctx, denied)
		if err != nil {
			return false, err
		}

		stillDenied := false
		for _, cap := range denied {
			if status, ok := results[cap]; !ok || status != StatusGranted {
				stillDenied = true
				break
			}
		}
		if !stillDenied {
			if err := n.step(StateAllGranted); err != nil {
				return false, err
			}
			return true, nil
		}

		if err := n.step(StateRetryPrompt); err != nil {
			return false, err
		}
		retry, err := n.Device.PromptRetry(ctx, denied)
		if err != nil {
			return false, err
		}
		if !retry {
			return false, nil
		}
		if err := n.step(StateChecking); err != nil {
			return false, err
		}
	}
}
