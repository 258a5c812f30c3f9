package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Game            Category = "Game"
	WebSocket       Category = "WebSocket"
	Bus             Category = "Bus"
	RabbitMQ        Category = "RabbitMQ"
	Mongo           Category = "Mongo"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Game
	Join   SubCategory = "Join"
	Start  SubCategory = "Start"
	Submit SubCategory = "Submit"
	Reveal SubCategory = "Reveal"
	Leave  SubCategory = "Leave"

	// Bus
	Subscribe SubCategory = "Subscribe"
	Delivery  SubCategory = "Delivery"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomCode     ExtraKey = "RoomCode"
	PlayerName   ExtraKey = "PlayerName"
	ConnectionID ExtraKey = "ConnectionID"
	EventType    ExtraKey = "EventType"
	ErrorMessage ExtraKey = "ErrorMessage"
)
