package ws

import "encoding/json"

// 請求與回應共用同一組事件名:
// client送joinedRoom/leftRoom/newBid, server以同名事件回覆
const (
	EventJoinedRoom = "joinedRoom"
	EventLeftRoom   = "leftRoom"
	EventNewBid     = "newBid"
	EventError      = "error"
)

// Envelope 所有ws訊息的外層格式
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoomPayload struct {
	AuctionID uint `json:"auctionId"`
}

type PlaceBidPayload struct {
	AuctionID uint   `json:"auctionId"`
	Bid       string `json:"bid"` //十進位字串
}

type RoomEventPayload struct {
	AuctionID uint `json:"auctionId"`
	UserID    uint `json:"userId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func mustEnvelope(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = nil
	}
	out, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return out
}
