package rooms

import "time"

type createRoomRequest struct {
	QuestionCount int `json:"questionCount"`
}

type createRoomResponse struct {
	Code          string    `json:"code"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type playerResponse struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

type roomResponse struct {
	Code          string           `json:"code"`
	Phase         string           `json:"phase"`
	QuestionCount int              `json:"questionCount"`
	CurrentRound  int              `json:"currentRound"`
	CreatedAt     time.Time        `json:"createdAt"`
	Players       []playerResponse `json:"players"`
}
