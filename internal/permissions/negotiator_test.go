package permissions

import (
	"context"
	"testing"
)

type scriptedDevice struct {
	checks     []map[Capability]Status
	checkCall  int
	requests   []map[Capability]Status
	reqCall    int
	retries    []bool
	retryCall  int
	settings   int
	requested  [][]Capability
	promptSeen [][]Capability
}

func (d *scriptedDevice) Check(_ context.Context, cap Capability) (Status, error) {
	round := d.checkCall
	if round >= len(d.checks) {
		round = len(d.checks) - 1
	}
	return d.checks[round][cap], nil
}

func (d *scriptedDevice) nextCheckRound() { d.checkCall++ }

func (d *scriptedDevice) Request(_ context.Context, caps []Capability) (map[Capability]Status, error) {
	d.requested = append(d.requested, caps)
	res := d.requests[d.reqCall]
	if d.reqCall < len(d.requests)-1 {
		d.reqCall++
	}
	d.nextCheckRound()
	return res, nil
}

func (d *scriptedDevice) PromptRetry(_ context.Context, denied []Capability) (bool, error) {
	d.promptSeen = append(d.promptSeen, denied)
	retry := d.retries[d.retryCall]
	if d.retryCall < len(d.retries)-1 {
		d.retryCall++
	}
	return retry, nil
}

func (d *scriptedDevice) OpenSettings(context.Context) error {
	d.settings++
	return nil
}

var allCaps = []Capability{CapStorageRead, CapStorageWrite, CapCamera}

func TestAcquireAllAlreadyGranted(t *testing.T) {
	dev := &scriptedDevice{
		checks: []map[Capability]Status{{
			CapStorageRead:  StatusGranted,
			CapStorageWrite: StatusGranted,
			CapCamera:       StatusGranted,
		}},
	}
	n := NewNegotiator(dev)
	ok, err := n.Acquire(context.Background(), allCaps)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected all permissions granted")
	}
	if n.State() != StateAllGranted {
		t.Fatalf("expected terminal state all_granted, got %s", n.State())
	}
	if len(dev.requested) != 0 {
		t.Fatal("no request dialog expected when everything is granted")
	}
}

func TestAcquireBlockedReturnsImmediately(t *testing.T) {
	dev := &scriptedDevice{
		checks: []map[Capability]Status{{
			CapStorageRead:  StatusGranted,
			CapStorageWrite: StatusBlocked,
			CapCamera:       StatusDenied,
		}},
	}
	n := NewNegotiator(dev)
	ok, err := n.Acquire(context.Background(), allCaps)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ok {
		t.Fatal("expected failure on blocked permission")
	}
	if n.State() != StateBlocked {
		t.Fatalf("expected terminal state blocked, got %s", n.State())
	}
	if len(dev.requested) != 0 {
		t.Fatal("blocked permission must not trigger further requests")
	}
	if dev.settings != 1 {
		t.Fatalf("expected one settings round trip, got %d", dev.settings)
	}
}

func TestAcquireRetryLoopThenGranted(t *testing.T) {
	dev := &scriptedDevice{
		checks: []map[Capability]Status{
			{CapStorageRead: StatusDenied, CapStorageWrite: StatusGranted, CapCamera: StatusDenied},
			{CapStorageRead: StatusGranted, CapStorageWrite: StatusGranted, CapCamera: StatusGranted},
		},
		requests: []map[Capability]Status{
			{CapStorageRead: StatusGranted, CapCamera: StatusDenied},
			{CapStorageRead: StatusGranted, CapCamera: StatusGranted},
		},
		retries: []bool{true},
	}
	n := NewNegotiator(dev)
	ok, err := n.Acquire(context.Background(), allCaps)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected success after retry")
	}
	if len(dev.promptSeen) != 1 {
		t.Fatalf("expected one retry prompt, got %d", len(dev.promptSeen))
	}
	if len(dev.requested) == 0 || len(dev.requested[0]) != 2 {
		t.Fatalf("expected only the denied capabilities to be requested, got %v", dev.requested)
	}
}

func TestAcquireUserCancelsRetry(t *testing.T) {
	dev := &scriptedDevice{
		checks: []map[Capability]Status{
			{CapStorageRead: StatusDenied, CapStorageWrite: StatusGranted, CapCamera: StatusGranted},
		},
		requests: []map[Capability]Status{
			{CapStorageRead: StatusDenied},
		},
		retries: []bool{false},
	}
	n := NewNegotiator(dev)
	ok, err := n.Acquire(context.Background(), allCaps)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ok {
		t.Fatal("expected failure after user cancelled the retry prompt")
	}
	if n.State() != StateRetryPrompt {
		t.Fatalf("expected to stop at retry_prompt, got %s", n.State())
	}
}

func TestTransitionTable(t *testing.T) {
	if !CanTransition(StateChecking, StateAllGranted) {
		t.Fatal("checking -> all_granted must be allowed")
	}
	if !CanTransition(StateRetryPrompt, StateChecking) {
		t.Fatal("retry_prompt -> checking must be allowed")
	}
	if CanTransition(StateBlocked, StateChecking) {
		t.Fatal("blocked is terminal")
	}
	if CanTransition(StateAllGranted, StateRequesting) {
		t.Fatal("all_granted is terminal")
	}
}
