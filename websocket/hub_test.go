// websocket/hub_test.go
package websocket

import (
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newHubClient(t, hub, 1)

	hub.NotifyRefresh("2026-09-01T10:00:00Z")

	event := receiveEvent(t, client)
	if event.Event != "refresh" {
		t.Errorf("Event = %q", event.Event)
	}
	if event.LastUpdated != "2026-09-01T10:00:00Z" {
		t.Errorf("LastUpdated = %q", event.LastUpdated)
	}

	// При отключении хаб закрывает канал клиента
	hub.Unregister <- client
	select {
	case _, open := <-client.Send:
		if open {
			t.Error("после отключения пришло сообщение вместо закрытия канала")
		}
	case <-time.After(time.Second):
		t.Fatal("канал клиента не закрыт после отключения")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newHubClient(t, hub, 1)
	second := newHubClient(t, hub, 1)

	hub.NotifyRefresh("2026-09-01T12:00:00Z")

	for _, client := range []*Client{first, second} {
		event := receiveEvent(t, client)
		if event.LastUpdated != "2026-09-01T12:00:00Z" {
			t.Errorf("LastUpdated = %q", event.LastUpdated)
		}
	}
}

func TestHubEvictsStalledClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Клиент без буфера и без читателя: доставить ему сообщение не выйдет
	stalled := newHubClient(t, hub, 0)

	hub.NotifyRefresh("2026-09-01T13:00:00Z")

	// Регистрация следующего клиента проходит только после того,
	// как хаб закончил рассылку и вернулся к приему команд
	newHubClient(t, hub, 1)

	// Хаб отключает застрявшего клиента, закрывая его канал
	select {
	case _, open := <-stalled.Send:
		if open {
			t.Error("застрявший клиент получил сообщение вместо отключения")
		}
	case <-time.After(time.Second):
		t.Fatal("застрявший клиент не отключен")
	}
}
