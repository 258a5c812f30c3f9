package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "rooms_created_total",
		Help:      "Number of rooms created.",
	})

	PlayersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "players_joined_total",
		Help:      "Number of players that joined a room.",
	})

	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "games_started_total",
		Help:      "Number of games started.",
	})

	GamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "games_completed_total",
		Help:      "Number of games that revealed their final question.",
	})

	AnswersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "answers_submitted_total",
		Help:      "Number of answers accepted (resubmissions included).",
	})

	RoundsRevealed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "rounds_revealed_total",
		Help:      "Number of questions revealed to a room.",
	})

	ActionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guessit",
		Name:      "action_errors_total",
		Help:      "Rejected player actions by error kind.",
	}, []string{"kind"})

	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "guessit",
		Name:      "live_connections",
		Help:      "Currently open websocket connections.",
	})

	ActionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "guessit",
		Name:      "action_duration_seconds",
		Help:      "Time spent handling a player action.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
