// Package scoring computes a value/urgency score for an inbound lead
// from its bill size, location, message language, and submission time.
//
// Scoring is pure and total: missing optional fields fall back to
// documented defaults and Score never fails. The only external input
// besides the lead itself is the clock, which is injected so the timing
// component is testable.
package scoring

import (
	"strings"
	"time"

	"github.com/ekosolar/lead-pipeline/internal/domain"
)

// Scorer derives a LeadScore from a Lead.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the system clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock creates a scorer with an injected clock.
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes all five components, the total, and the derived
// priority, category, and insights for the given lead.
func (s *Scorer) Score(lead domain.Lead) domain.LeadScore {
	score := domain.LeadScore{
		ElectricBill: scoreBill(lead),
		Location:     scoreLocation(lead.Address),
		Urgency:      matchPhrases(lead.Message, urgencyRows),
		HomeValue:    matchPhrases(lead.Message, homeValueRows),
		Timing:       scoreTiming(s.now()),
	}

	score.Total = score.ElectricBill + score.Location + score.Urgency + score.HomeValue + score.Timing
	score.Priority = priorityFor(score.Total)
	score.Category = categoryFor(score.Total)
	score.Insights = insightsFor(score)

	return score
}

func scoreBill(lead domain.Lead) int {
	if !lead.HasBill() {
		return defaultBillScore
	}
	for _, band := range billBands {
		if lead.ElectricBill >= band.Min {
			return band.Score
		}
	}
	return defaultBillScore
}

func scoreLocation(address string) int {
	if address == "" {
		return otherLocationScore
	}
	addr := strings.ToLower(address)
	for _, tier := range locationTiers {
		for _, area := range tier.Areas {
			if strings.Contains(addr, area) {
				return tier.Score
			}
		}
	}
	return otherLocationScore
}

func matchPhrases(message string, rows []phraseRow) int {
	if message == "" {
		return 0
	}
	msg := strings.ToLower(message)
	for _, row := range rows {
		for _, phrase := range row.Phrases {
			if strings.Contains(msg, phrase) {
				return row.Score
			}
		}
	}
	return 0
}

func scoreTiming(now time.Time) int {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return weekendBonus
	}
	hour := now.Hour()
	if hour >= businessStartHour && hour <= businessEndHour {
		return businessBonus
	}
	if hour >= eveningStartHour && hour <= eveningEndHour {
		return eveningBonus
	}
	return 0
}

func priorityFor(total int) domain.Priority {
	switch {
	case total >= 180:
		return domain.PriorityUrgent
	case total >= 120:
		return domain.PriorityHigh
	case total >= 80:
		return domain.PriorityMedium
	default:
		return domain.PriorityStandard
	}
}

func categoryFor(total int) domain.Category {
	switch {
	case total >= 200:
		return domain.CategoryPlatinum
	case total >= 150:
		return domain.CategoryGold
	case total >= 100:
		return domain.CategorySilver
	case total >= 60:
		return domain.CategoryBronze
	default:
		return domain.CategoryStandard
	}
}

// insightsFor generates human-readable follow-up guidance. Order is
// stable: bill, location, urgency, home value, timing, then the action
// recommendation keyed off the total.
func insightsFor(s domain.LeadScore) []string {
	var insights []string

	if s.ElectricBill >= 80 {
		insights = append(insights, "High electric bill indicates excellent solar savings potential")
	} else if s.ElectricBill >= 40 {
		insights = append(insights, "Moderate electric bill - good candidate for solar")
	}

	if s.Location >= 40 {
		insights = append(insights, "Premium location - likely high property value and solar investment capacity")
	} else if s.Location >= 25 {
		insights = append(insights, "Good location - strong solar adoption area")
	}

	if s.Urgency >= 25 {
		insights = append(insights, "High urgency indicators - prioritize immediate follow-up")
	} else if s.Urgency >= 15 {
		insights = append(insights, "Shows interest - good follow-up candidate")
	}

	if s.HomeValue >= 30 {
		insights = append(insights, "High-value home indicators - premium system candidate")
	}

	if s.Timing >= 15 {
		insights = append(insights, "Submitted during business hours - serious inquiry")
	} else if s.Timing >= 10 {
		insights = append(insights, "Evening submission - researching after work")
	}

	switch {
	case s.Total >= 150:
		insights = append(insights, "PRIORITY LEAD: Contact within 1 hour for best conversion")
	case s.Total >= 100:
		insights = append(insights, "Quality lead: Contact within 4 hours")
	case s.Total >= 60:
		insights = append(insights, "Good prospect: Follow up within 24 hours")
	}

	return insights
}
