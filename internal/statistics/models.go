package statistics

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"medtransit/internal/transfer/models"
	dErrors "medtransit/pkg/domain-errors"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts the English names and their Spanish aliases
// (hoy, semana, mes, anio). Empty means today.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hoy", "today":
		return PeriodToday, nil
	case "semana", "week":
		return PeriodWeek, nil
	case "mes", "month":
		return PeriodMonth, nil
	case "anio", "año", "year":
		return PeriodYear, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid period "+strconv.Quote(s)+": expected hoy, semana, mes or anio")
}

// Range returns the closed date range of the period containing today.
func (p Period) Range(today time.Time) (from, to time.Time) {
	switch p {
	case PeriodWeek:
		from = models.WeekStart(today)
		return from, from.AddDate(0, 0, 6)
	case PeriodMonth:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1)
	case PeriodYear:
		from = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return today, today
	}
}

// Bucket counts the closed transfers of one breakdown slot.
type Bucket struct {
	Label        string `json:"etiqueta"`
	Total        int    `json:"total"`
	Finished     int    `json:"finalizados"`
	Canceled     int    `json:"cancelados"`
	Wheelchair   int    `json:"conSillaRuedas"`
	WithoutChair int    `json:"sinSillaRuedas"`
}

func (b *Bucket) add(state models.State, wheelchair bool) {
	switch state {
	case models.StateFinished:
		b.Finished++
		if wheelchair {
			b.Wheelchair++
		} else {
			b.WithoutChair++
		}
	case models.StateCanceled:
		b.Canceled++
	default:
		return
	}
	b.Total = b.Finished + b.Canceled
}

// AgendaStatistics summarises one agenda over a period.
type AgendaStatistics struct {
	AgendaID         uuid.UUID `json:"idAgenda"`
	Period           Period    `json:"periodo"`
	From             string    `json:"desde"`
	To               string    `json:"hasta"`
	Totals           Bucket    `json:"totales"`
	SuccessRate      float64   `json:"porcentajeExito"`
	CancellationRate float64   `json:"porcentajeCancelacion"`
	Breakdown        []Bucket  `json:"desglose"`
}

// computeRates fills the percentages from Totals; both are 0 with no transfers.
func (s *AgendaStatistics) computeRates() {
	if s.Totals.Total == 0 {
		s.SuccessRate, s.CancellationRate = 0, 0
		return
	}
	s.SuccessRate = float64(s.Totals.Finished) / float64(s.Totals.Total) * 100
	s.CancellationRate = float64(s.Totals.Canceled) / float64(s.Totals.Total) * 100
}

// Summary counts authoritative records per state over a date range.
type Summary struct {
	From     string `json:"desde"`
	To       string `json:"hasta"`
	Total    int    `json:"total"`
	Pending  int    `json:"pendientes"`
	Started  int    `json:"iniciados"`
	Finished int    `json:"finalizados"`
	Canceled int    `json:"cancelados"`
}

func (s *Summary) add(state models.State) {
	switch state {
	case models.StatePending:
		s.Pending++
	case models.StateStarted:
		s.Started++
	case models.StateFinished:
		s.Finished++
	case models.StateCanceled:
		s.Canceled++
	default:
		return
	}
	s.Total++
}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// buckets lays out the empty breakdown for p over [from, to] and returns a
// function mapping a date to its bucket index.
func buckets(p Period, from, to time.Time) ([]Bucket, func(time.Time) int) {
	switch p {
	case PeriodWeek:
		out := make([]Bucket, 7)
		for i := range out {
			out[i].Label = models.WeekdayName(i + 1)
		}
		return out, func(d time.Time) int { return models.ISOWeekday(d) - 1 }
	case PeriodMonth:
		weeks := (to.Day() + 6) / 7
		out := make([]Bucket, weeks)
		for i := range out {
			out[i].Label = "Week " + strconv.Itoa(i+1)
		}
		return out, func(d time.Time) int { return (d.Day() - 1) / 7 }
	case PeriodYear:
		out := make([]Bucket, 12)
		for i := range out {
			out[i].Label = monthLabels[i]
		}
		return out, func(d time.Time) int { return int(d.Month()) - 1 }
	default:
		return []Bucket{{Label: "Today"}}, func(time.Time) int { return 0 }
	}
}
