package events_test

import (
	"sync"

	"citizenpulse/backend/internal/models"
)

type mockClient struct {
	filter string
	recv   chan models.ChangeEvent

	mu     sync.Mutex
	closed int
}

func newMockClient(filter string, buffer int) *mockClient {
	return &mockClient{filter: filter, recv: make(chan models.ChangeEvent, buffer)}
}

func (c *mockClient) GetReportFilter() string                   { return c.filter }
func (c *mockClient) GetSendChannel() chan<- models.ChangeEvent { return c.recv }
func (c *mockClient) Run()                                      {}

func (c *mockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

func (c *mockClient) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
