package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/RoyceAzure/lab/marketplace/internal/api/dto"
	"github.com/RoyceAzure/lab/marketplace/internal/model"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// room 一個拍賣一間房
// 出價與其廣播都丟進jobs, 由單一worker goroutine依序處理,
// 保證同房間的成員看到相同的newBid順序
type room struct {
	auctionID uint

	mu      sync.Mutex
	members map[*Client]bool

	// 只在hub.mu底下寫入或關閉, 最後一個成員離開時房間回收
	jobs chan func()
}

func newRoom(auctionID uint) *room {
	r := &room{
		auctionID: auctionID,
		members:   make(map[*Client]bool),
		jobs:      make(chan func(), 64),
	}
	go r.worker()
	return r
}

func (r *room) worker() {
	for job := range r.jobs {
		job()
	}
}

func (r *room) addMember(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[c] = true
}

// removeMember 回傳剩餘人數
func (r *room) removeMember(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, c)
	return len(r.members)
}

func (r *room) snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]*Client, 0, len(r.members))
	for c := range r.members {
		members = append(members, c)
	}
	return members
}

// broadcast 只送給房間成員, 送不進去的連線視為落後直接踢掉
func (r *room) broadcast(msg []byte) {
	for _, c := range r.snapshot() {
		c.trySend(msg)
	}
}

// Hub 管理所有拍賣房間與連線
type Hub struct {
	mu    sync.Mutex
	rooms map[uint]*room

	bidService service.IBidService
	logger     *zerolog.Logger
}

func NewHub(bidService service.IBidService, logger *zerolog.Logger) *Hub {
	if bidService == nil {
		panic("ws hub missing bid service")
	}
	return &Hub{
		rooms:      make(map[uint]*room),
		bidService: bidService,
		logger:     logger,
	}
}

// caller必須持有h.mu
func (h *Hub) getOrCreateRoom(auctionID uint) *room {
	r, ok := h.rooms[auctionID]
	if !ok {
		r = newRoom(auctionID)
		h.rooms[auctionID] = r
	}
	return r
}

// HandleMessage 處理一則已解碼的client訊息
// 由client的readPump呼叫, 每個連線一次一則
func (h *Hub) HandleMessage(ctx context.Context, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendEvent(EventError, ErrorPayload{Message: "invalid message format"})
		return
	}

	switch env.Event {
	case EventJoinedRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.AuctionID == 0 {
			c.sendEvent(EventError, ErrorPayload{Message: "invalid joinedRoom payload"})
			return
		}
		h.joinRoom(c, payload.AuctionID)

	case EventLeftRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.AuctionID == 0 {
			c.sendEvent(EventError, ErrorPayload{Message: "invalid leftRoom payload"})
			return
		}
		h.leaveRoom(c, payload.AuctionID)

	case EventNewBid:
		var payload PlaceBidPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.AuctionID == 0 {
			c.sendEvent(EventError, ErrorPayload{Message: "invalid newBid payload"})
			return
		}
		h.placeBid(ctx, c, payload)

	default:
		c.sendEvent(EventError, ErrorPayload{Message: "unknown event"})
	}
}

// joinRoom 入房的ack同步回給本人, 不廣播
func (h *Hub) joinRoom(c *Client, auctionID uint) {
	h.mu.Lock()
	h.getOrCreateRoom(auctionID).addMember(c)
	h.mu.Unlock()

	c.trackRoom(auctionID)
	c.sendEvent(EventJoinedRoom, RoomEventPayload{AuctionID: auctionID, UserID: c.userID})
}

// leaveRoom 離房的ack同步回給本人, 最後一人離開時回收房間
func (h *Hub) leaveRoom(c *Client, auctionID uint) {
	h.mu.Lock()
	r := h.rooms[auctionID]
	if r == nil {
		h.mu.Unlock()
		return
	}
	if r.removeMember(c) == 0 {
		delete(h.rooms, auctionID)
		close(r.jobs)
	}
	h.mu.Unlock()

	c.untrackRoom(auctionID)
	c.sendEvent(EventLeftRoom, RoomEventPayload{AuctionID: auctionID, UserID: c.userID})
}

// placeBid 出價必須是已認證連線, 拒絕只回給出價者本人
func (h *Hub) placeBid(ctx context.Context, c *Client, payload PlaceBidPayload) {
	if c.userID == 0 {
		c.sendEvent(EventError, ErrorPayload{Message: "authentication required to bid"})
		return
	}

	amount, err := decimal.NewFromString(payload.Bid)
	if err != nil || amount.IsNegative() {
		c.sendEvent(EventError, ErrorPayload{Message: "invalid bid amount"})
		return
	}

	// 排job要在h.mu底下, 避免排進已回收房間的channel
	// job持有房間指標, worker廣播時不碰h.mu
	h.mu.Lock()
	r := h.getOrCreateRoom(payload.AuctionID)
	r.jobs <- func() {
		bid, err := h.bidService.PlaceBid(ctx, payload.AuctionID, c.userID, amount)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn().Err(err).Uint("auction_id", payload.AuctionID).Uint("user_id", c.userID).Msg("place bid failed")
			}
			c.sendEvent(EventError, ErrorPayload{Message: "place bid failed"})
			return
		}
		r.broadcast(mustEnvelope(EventNewBid, convertBid(bid)))
	}
	h.mu.Unlock()
}

// RemoveClient 連線關閉時把client從所有房間移除
func (h *Hub) RemoveClient(c *Client) {
	for _, auctionID := range c.joinedRooms() {
		h.leaveRoom(c, auctionID)
	}
}

func convertBid(b *model.Bid) dto.BidDTO {
	d := dto.BidDTO{
		ID:        b.ID,
		Amount:    b.Amount.String(),
		Time:      b.Time,
		UserID:    b.UserID,
		AuctionID: b.AuctionID,
	}
	if b.Bidder != nil {
		d.Bidder = &dto.UserDTO{
			ID:    b.Bidder.ID,
			Email: b.Bidder.Email,
			Name:  b.Bidder.Name,
			Photo: b.Bidder.Photo,
		}
	}
	return d
}
