package event

import (
	"sync"
	"testing"
)

func TestBus_PublishToSubscriber(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe("stage.started", func(ev Event) {
		got = append(got, ev)
	})

	bus.Publish(NewStageStartedEvent("run-1", "generate"))
	bus.Publish(NewRunStartedEvent("run-1", "hyperion-testnet", "erc20"))

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	ev, ok := got[0].(StageStartedEvent)
	if !ok {
		t.Fatalf("got %T, want StageStartedEvent", got[0])
	}
	if ev.Stage != "generate" {
		t.Errorf("Stage = %q, want %q", ev.Stage, "generate")
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var count int
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(NewStageStartedEvent("run-1", "audit"))
	bus.Publish(NewGateDecidedEvent("run-1", false, "severity blocked"))

	if count != 2 {
		t.Errorf("wildcard handler called %d times, want 2", count)
	}
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })
	bus.Subscribe("run.completed", func(Event) { order = append(order, "specific") })

	bus.Publish(NewRunCompletedEvent("run-1", "completed", ""))

	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("dispatch order = %v, want [specific wildcard]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var count int
	id := bus.Subscribe("stage.completed", func(Event) { count++ })

	bus.Publish(NewStageCompletedEvent("run-1", "audit", "succeeded", ""))
	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe returned false for live subscription")
	}
	bus.Publish(NewStageCompletedEvent("run-1", "deploy", "succeeded", ""))

	if count != 1 {
		t.Errorf("handler called %d times, want 1", count)
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe returned true for removed subscription")
	}
}

func TestBus_PanickingHandlerDoesNotBlockDelivery(t *testing.T) {
	bus := NewBus()

	var delivered bool
	bus.Subscribe("run.started", func(Event) { panic("boom") })
	bus.Subscribe("run.started", func(Event) { delivered = true })

	bus.Publish(NewRunStartedEvent("run-1", "hyperion-testnet", "erc20"))

	if !delivered {
		t.Error("second handler not called after first panicked")
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(NewStageStartedEvent("run-1", "audit"))
			}
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("handler called %d times, want 1000", count)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(Event) {})
	bus.Subscribe("b", func(Event) {})

	if bus.SubscriptionCount() != 2 {
		t.Fatalf("SubscriptionCount() = %d, want 2", bus.SubscriptionCount())
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d, want 0", bus.SubscriptionCount())
	}
}
