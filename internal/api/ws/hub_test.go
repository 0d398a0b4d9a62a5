package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/mocks"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint) *Client {
	return &Client{
		id:     fmt.Sprintf("test-%d", userID),
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[uint]bool),
	}
}

func readEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ws event")
		return Envelope{}
	}
}

func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func joinMsg(auctionID uint) []byte {
	return mustEnvelope(EventJoinedRoom, JoinRoomPayload{AuctionID: auctionID})
}

func leaveMsg(auctionID uint) []byte {
	return mustEnvelope(EventLeftRoom, JoinRoomPayload{AuctionID: auctionID})
}

func bidMsg(auctionID uint, amount string) []byte {
	return mustEnvelope(EventNewBid, PlaceBidPayload{AuctionID: auctionID, Bid: amount})
}

func TestHubBroadcastsOnlyToRoomMembers(t *testing.T) {
	bidService := new(mocks.MockBidService)
	bidService.On("PlaceBid", mock.Anything, uint(5), uint(9), mock.Anything).
		Return(&model.Bid{ID: 1, Amount: decimal.RequireFromString("10"), UserID: 9, AuctionID: 5}, nil)

	hub := NewHub(bidService, nil)
	ctx := context.Background()

	bidder := newTestClient(9)
	watcher := newTestClient(0)
	outsider := newTestClient(3)

	hub.HandleMessage(ctx, bidder, joinMsg(5))
	hub.HandleMessage(ctx, watcher, joinMsg(5))
	hub.HandleMessage(ctx, outsider, joinMsg(6))

	// 入房ack只回給本人一次
	require.Equal(t, EventJoinedRoom, readEvent(t, bidder).Event)
	require.Equal(t, EventJoinedRoom, readEvent(t, watcher).Event)
	require.Equal(t, EventJoinedRoom, readEvent(t, outsider).Event)

	hub.HandleMessage(ctx, bidder, bidMsg(5, "10"))

	for _, c := range []*Client{bidder, watcher} {
		env := readEvent(t, c)
		require.Equal(t, EventNewBid, env.Event)
	}
	requireNoEvent(t, outsider)
	bidService.AssertExpectations(t)
}

func TestHubRoomAcksGoToSenderOnly(t *testing.T) {
	hub := NewHub(new(mocks.MockBidService), nil)
	ctx := context.Background()

	leaver := newTestClient(3)
	stayer := newTestClient(9)

	hub.HandleMessage(ctx, stayer, joinMsg(5))
	hub.HandleMessage(ctx, leaver, joinMsg(5))

	// stayer不會收到leaver的入房echo
	require.Equal(t, EventJoinedRoom, readEvent(t, stayer).Event)
	require.Equal(t, EventJoinedRoom, readEvent(t, leaver).Event)
	requireNoEvent(t, stayer)

	hub.HandleMessage(ctx, leaver, leaveMsg(5))

	// 離房ack回給離開者本人, 留下的人不會收到
	env := readEvent(t, leaver)
	require.Equal(t, EventLeftRoom, env.Event)

	var payload RoomEventPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Equal(t, uint(5), payload.AuctionID)
	require.Equal(t, uint(3), payload.UserID)

	requireNoEvent(t, stayer)
}

func TestHubRejectsAnonymousBidToSenderOnly(t *testing.T) {
	bidService := new(mocks.MockBidService)
	hub := NewHub(bidService, nil)
	ctx := context.Background()

	anon := newTestClient(0)
	other := newTestClient(9)

	hub.HandleMessage(ctx, anon, joinMsg(5))
	hub.HandleMessage(ctx, other, joinMsg(5))
	require.Equal(t, EventJoinedRoom, readEvent(t, anon).Event)
	require.Equal(t, EventJoinedRoom, readEvent(t, other).Event)

	hub.HandleMessage(ctx, anon, bidMsg(5, "10"))

	env := readEvent(t, anon)
	require.Equal(t, EventError, env.Event)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Contains(t, payload.Message, "authentication required")

	requireNoEvent(t, other)
	bidService.AssertNotCalled(t, "PlaceBid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHubBroadcastsBidsInOrder(t *testing.T) {
	bidService := new(mocks.MockBidService)
	for i := 1; i <= 5; i++ {
		amount := decimal.NewFromInt(int64(i * 10))
		bidService.On("PlaceBid", mock.Anything, uint(5), uint(9), amount).
			Return(&model.Bid{ID: uint(i), Amount: amount, UserID: 9, AuctionID: 5}, nil).Once()
	}

	hub := NewHub(bidService, nil)
	ctx := context.Background()

	bidder := newTestClient(9)
	hub.HandleMessage(ctx, bidder, joinMsg(5))
	require.Equal(t, EventJoinedRoom, readEvent(t, bidder).Event)

	for i := 1; i <= 5; i++ {
		hub.HandleMessage(ctx, bidder, bidMsg(5, fmt.Sprintf("%d", i*10)))
	}

	// 單一worker依序處理, 收到的newBid順序必須與出價順序一致
	for i := 1; i <= 5; i++ {
		env := readEvent(t, bidder)
		require.Equal(t, EventNewBid, env.Event)

		var bid struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &bid))
		require.Equal(t, uint(i), bid.ID)
	}
}

func TestHubLeaveRoomStopsDelivery(t *testing.T) {
	bidService := new(mocks.MockBidService)
	bidService.On("PlaceBid", mock.Anything, uint(5), uint(9), mock.Anything).
		Return(&model.Bid{ID: 1, Amount: decimal.RequireFromString("10"), UserID: 9, AuctionID: 5}, nil)

	hub := NewHub(bidService, nil)
	ctx := context.Background()

	bidder := newTestClient(9)
	leaver := newTestClient(3)

	hub.HandleMessage(ctx, bidder, joinMsg(5))
	hub.HandleMessage(ctx, leaver, joinMsg(5))
	require.Equal(t, EventJoinedRoom, readEvent(t, bidder).Event)
	require.Equal(t, EventJoinedRoom, readEvent(t, leaver).Event)

	hub.HandleMessage(ctx, leaver, leaveMsg(5))
	require.Equal(t, EventLeftRoom, readEvent(t, leaver).Event)

	hub.HandleMessage(ctx, bidder, bidMsg(5, "10"))
	require.Equal(t, EventNewBid, readEvent(t, bidder).Event)
	requireNoEvent(t, leaver)
}

func TestHubReclaimsEmptyRoom(t *testing.T) {
	hub := NewHub(new(mocks.MockBidService), nil)
	ctx := context.Background()

	c := newTestClient(9)
	hub.HandleMessage(ctx, c, joinMsg(5))
	require.Equal(t, EventJoinedRoom, readEvent(t, c).Event)

	hub.mu.Lock()
	require.Contains(t, hub.rooms, uint(5))
	hub.mu.Unlock()

	hub.HandleMessage(ctx, c, leaveMsg(5))
	require.Equal(t, EventLeftRoom, readEvent(t, c).Event)

	// 最後一人離開後房間與worker都回收
	hub.mu.Lock()
	require.NotContains(t, hub.rooms, uint(5))
	hub.mu.Unlock()

	// 再次加入要能重建房間
	hub.HandleMessage(ctx, c, joinMsg(5))
	require.Equal(t, EventJoinedRoom, readEvent(t, c).Event)
}

func TestHubInvalidMessage(t *testing.T) {
	hub := NewHub(new(mocks.MockBidService), nil)

	c := newTestClient(9)
	hub.HandleMessage(context.Background(), c, []byte("not json"))
	require.Equal(t, EventError, readEvent(t, c).Event)

	hub.HandleMessage(context.Background(), c, mustEnvelope("noSuchEvent", nil))
	require.Equal(t, EventError, readEvent(t, c).Event)
}
