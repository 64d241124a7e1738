package services

import (
	"context"
	"ocean-query-service/internal/adapters/memory"
	"ocean-query-service/internal/domain"
	"time"
)

type stubIndex struct {
	ids   []int64
	err   error
	calls int
	lastK int
}

func (s *stubIndex) Search(ctx context.Context, vector [2]float32, k int) ([]int64, error) {
	s.calls++
	s.lastK = k
	return s.ids, s.err
}

type recordingPublisher struct {
	requestIDs []string
	answers    [][]domain.ResolvedAnswer
	err        error
}

func (p *recordingPublisher) Publish(ctx context.Context, requestID string, q domain.ParsedQuery, answers []domain.ResolvedAnswer) error {
	p.requestIDs = append(p.requestIDs, requestID)
	p.answers = append(p.answers, answers)
	return p.err
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func row(id int64, lat, lon float64, when time.Time, param domain.Parameter, v float64) memory.Row {
	return memory.Row{
		ID:          id,
		Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
		Date:        when,
		Values:      map[domain.Parameter]float64{param: v},
	}
}

func ptr[T any](v T) *T { return &v }
