package domain

import "time"

// Lead is one form submission from a prospective customer. It is created
// at intake with a server-assigned ID and never mutated afterwards.
type Lead struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address,omitempty"`
	Message      string    `json:"message,omitempty"`
	ElectricBill float64   `json:"electric_bill,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// HasBill reports whether the lead supplied a monthly bill figure.
func (l Lead) HasBill() bool { return l.ElectricBill > 0 }

// Priority ranks how quickly a lead should be worked.
type Priority string

const (
	PriorityStandard Priority = "STANDARD"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityUrgent   Priority = "URGENT"
)

// Category buckets a lead by expected value.
type Category string

const (
	CategoryStandard Category = "Standard Lead"
	CategoryBronze   Category = "Bronze Lead"
	CategorySilver   Category = "Silver Lead"
	CategoryGold     Category = "Gold Lead"
	CategoryPlatinum Category = "Platinum Lead"
)

// LeadScore is the derived value/urgency assessment for one lead.
// Component scores are kept separate so the admin notification can show
// a breakdown; Total is their sum.
type LeadScore struct {
	ElectricBill int      `json:"electric_bill"`
	Location     int      `json:"location"`
	Urgency      int      `json:"urgency"`
	HomeValue    int      `json:"home_value"`
	Timing       int      `json:"timing"`
	Total        int      `json:"total"`
	Priority     Priority `json:"priority"`
	Category     Category `json:"category"`
	Insights     []string `json:"insights"`
}
