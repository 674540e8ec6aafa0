package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/ccollicutt/babylog/pkg/parser"
)

// DiaperPayload is the request body for a diaper change.
type DiaperPayload struct {
	Mode        string `json:"mode"`
	PeeAmount   string `json:"pee_amount,omitempty"`
	PooAmount   string `json:"poo_amount,omitempty"`
	Color       string `json:"color,omitempty"`
	Consistency string `json:"consistency,omitempty"`
	TimeMS      int64  `json:"time_ms"`
}

// BreastFeedingPayload is the request body for a breastfeeding session.
type BreastFeedingPayload struct {
	LeftSeconds  int64 `json:"left_seconds"`
	RightSeconds int64 `json:"right_seconds"`
	StartTimeMS  int64 `json:"start_time_ms"`
}

// BottleFeedingPayload is the request body for a bottle feed.
type BottleFeedingPayload struct {
	AmountML   float64 `json:"amount_ml"`
	BottleType string  `json:"bottle_type,omitempty"`
	TimeMS     int64   `json:"time_ms"`
}

// SleepPayload is the request body for a sleep session.
type SleepPayload struct {
	DurationSeconds int64 `json:"duration_seconds"`
	StartTimeMS     int64 `json:"start_time_ms"`
}

// request is an endpoint path (relative to the child) and its body.
type request struct {
	path string
	body any
}

// buildRequest maps an event to its endpoint. Unknown event types are an error.
func buildRequest(ev parser.Event) (request, error) {
	switch e := ev.(type) {
	case *parser.DiaperEvent:
		return request{path: "/diapers", body: DiaperPayload{
			Mode:        string(e.Type),
			PeeAmount:   string(e.PeeSize),
			PooAmount:   string(e.PooSize),
			Color:       e.Color,
			Consistency: e.Consistency,
			TimeMS:      epochMillis(e.Timestamp),
		}}, nil
	case *parser.BreastFeedingEvent:
		return request{path: "/feedings/breast", body: BreastFeedingPayload{
			LeftSeconds:  minutesToSeconds(e.LeftMinutes),
			RightSeconds: minutesToSeconds(e.RightMinutes),
			StartTimeMS:  epochMillis(e.Timestamp),
		}}, nil
	case *parser.BottleFeedingEvent:
		return request{path: "/feedings/bottle", body: BottleFeedingPayload{
			AmountML:   e.QuantityML,
			BottleType: e.FeedType,
			TimeMS:     epochMillis(e.Timestamp),
		}}, nil
	case *parser.SleepEvent:
		return request{path: "/sleeps", body: SleepPayload{
			DurationSeconds: int64(e.Minutes) * 60,
			StartTimeMS:     epochMillis(e.Timestamp),
		}}, nil
	default:
		return request{}, fmt.Errorf("%w: %T", ErrUnsupportedEvent, ev)
	}
}

func epochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func minutesToSeconds(m float64) int64 {
	return int64(math.Round(m * 60))
}
