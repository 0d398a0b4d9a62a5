package constants

const (
	//分頁
	DefaultPagingLimit  int = 10
	DefaultPagingOffset int = 0
)

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
)

type TokenDurationHour int

const (
	AccessTokenDuration TokenDurationHour = 24
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)

// 靜態資源路徑, 圖片上傳後回傳相對路徑
const (
	StaticURLPrefix = "/static"
	ImageDirName    = "images"
)
