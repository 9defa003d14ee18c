package event

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件（同步投递）
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var received any
	bus.Subscribe("test", func(event any) {
		received = event
	})

	bus.Publish("test", "hello")

	if received != "hello" {
		t.Errorf("handler 收到 %v, 期望 %v", received, "hello")
	}
}

// TestPublishNoSubscribers 测试发布无订阅者的事件不会 panic
func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")
}

// TestSubscribeNilHandler 测试 nil handler 被忽略
func TestSubscribeNilHandler(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("test", nil)
	bus.SubscribeAll(nil)
	bus.Publish("test", "data")
}

// TestDeliveryOrder 测试 handler 按订阅顺序调用，通配 handler 最后调用
func TestDeliveryOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	bus.SubscribeAll(func(name string, event any) { order = append(order, "all:"+name) })
	bus.Subscribe(EventButtonPressed, func(event any) { order = append(order, "first") })
	bus.Subscribe(EventButtonPressed, func(event any) { order = append(order, "second") })

	bus.Publish(EventButtonPressed, ActuatorEvent{Entity: 1, Name: "b"})

	want := []string{"first", "second", "all:" + EventButtonPressed}
	if len(order) != len(want) {
		t.Fatalf("调用顺序 %v, 期望 %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("调用顺序 %v, 期望 %v", order, want)
		}
	}
}

// TestMultipleEvents 测试不同事件名称互不干扰
func TestMultipleEvents(t *testing.T) {
	bus := NewBus()
	var pressed, launched bool

	bus.Subscribe(EventButtonPressed, func(event any) {
		pressed = true
	})
	bus.Subscribe(EventLaunched, func(event any) {
		launched = true
	})

	bus.Publish(EventButtonPressed, ActuatorEvent{})

	if !pressed {
		t.Error("pressed handler 应该被调用")
	}
	if launched {
		t.Error("launched handler 不应该被调用")
	}
}

// TestHandlerPanicIsContained 测试 handler panic 不影响后续 handler
func TestHandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	var called bool

	bus.Subscribe("test", func(event any) { panic("boom") })
	bus.Subscribe("test", func(event any) { called = true })

	bus.Publish("test", nil)

	if !called {
		t.Error("panic 之后的 handler 应该仍被调用")
	}
}

// TestConcurrentSubscribeAndPublish 测试并发订阅和发布的线程安全性
func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	bus.Subscribe("test", func(event any) {
		count.Add(1)
	})

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("test", "data")
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe("test", func(event any) {
				count.Add(1)
			})
		}()
	}

	wg.Wait()

	if count.Load() < 100 {
		t.Errorf("至少应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}

// TestPublishEventData 测试事件数据正确传递
func TestPublishEventData(t *testing.T) {
	bus := NewBus()

	var received ActuatorEvent
	bus.Subscribe(EventLaunched, func(event any) {
		received = event.(ActuatorEvent)
	})

	sent := ActuatorEvent{Entity: 42, Name: "pad_a"}
	bus.Publish(EventLaunched, sent)

	if received != sent {
		t.Errorf("收到 %+v, 期望 %+v", received, sent)
	}
}
