//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/protocol"
)

// MockConnection 终端客户端连接的 mock，Incoming 作为 Receive 的数据源
type MockConnection struct {
	mock.Mock
	Incoming chan *protocol.Message
}

// NewMockConnection 创建 mock 连接
func NewMockConnection() *MockConnection {
	return &MockConnection{Incoming: make(chan *protocol.Message, 16)}
}

func (m *MockConnection) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockConnection) Receive() <-chan *protocol.Message {
	return m.Incoming
}

func (m *MockConnection) Close() {
	m.Called()
}

func (m *MockConnection) Ping() error {
	return m.Called().Error(0)
}

func (m *MockConnection) CreateRoom(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockConnection) JoinRoom(code, name string) error {
	return m.Called(code, name).Error(0)
}

func (m *MockConnection) LeaveRoom() error {
	return m.Called().Error(0)
}

func (m *MockConnection) StartGame() error {
	return m.Called().Error(0)
}

func (m *MockConnection) Draw() error {
	return m.Called().Error(0)
}

func (m *MockConnection) Discard(cards []card.Card) error {
	return m.Called(cards).Error(0)
}

func (m *MockConnection) Showdown() error {
	return m.Called().Error(0)
}

func (m *MockConnection) Chat(text string) error {
	return m.Called(text).Error(0)
}

func (m *MockConnection) GetRoomList() error {
	return m.Called().Error(0)
}

func (m *MockConnection) GetOnlineCount() error {
	return m.Called().Error(0)
}

func (m *MockConnection) GetStats() error {
	return m.Called().Error(0)
}

func (m *MockConnection) GetLeaderboard(limit int) error {
	return m.Called(limit).Error(0)
}
