package scoring

// Scoring tables are configuration data, not control flow. The phrase
// lists are heuristics tuned from real Atlanta-metro lead history; keep
// them here so they can be adjusted without touching the scorer.

// billBand maps a minimum monthly bill to a component score. Bands are
// evaluated in descending order; first match wins.
type billBand struct {
	Min   float64
	Score int
}

var billBands = []billBand{
	{Min: 500, Score: 100}, // premium customers
	{Min: 350, Score: 80},  // high-value
	{Min: 250, Score: 60},  // good prospects
	{Min: 150, Score: 40},  // standard
	{Min: 100, Score: 20},  // basic
	{Min: 0, Score: 10},    // low usage
}

// defaultBillScore applies when no bill figure was submitted.
const defaultBillScore = 10

// locationTier is an ordered word-list with the score awarded on the
// first case-insensitive substring match against the address.
type locationTier struct {
	Areas []string
	Score int
}

var locationTiers = []locationTier{
	{
		Areas: []string{"buckhead", "sandy springs", "dunwoody", "roswell", "alpharetta", "johns creek"},
		Score: 50,
	},
	{
		Areas: []string{"atlanta", "brookhaven", "decatur", "chamblee", "doraville"},
		Score: 30,
	},
	{
		Areas: []string{"stone mountain", "tucker", "norcross", "duluth"},
		Score: 20,
	},
}

// otherLocationScore applies when the address matches no tier, or when
// no address was submitted.
const otherLocationScore = 10

// phraseRow awards a score when any of its phrases appears in the
// free-text message. Rows are ordered; first matching row wins.
type phraseRow struct {
	Phrases []string
	Score   int
}

var urgencyRows = []phraseRow{
	{Phrases: []string{"asap", "urgent", "soon", "immediately", "this week"}, Score: 30},
	{Phrases: []string{"interested", "ready", "looking", "planning"}, Score: 20},
	{Phrases: []string{"considering", "thinking", "maybe", "someday"}, Score: 5},
}

var homeValueRows = []phraseRow{
	{Phrases: []string{"mansion", "estate", "luxury", "custom home"}, Score: 40},
	{Phrases: []string{"large home", "big house", "5 bedroom", "6 bedroom", "pool"}, Score: 25},
	{Phrases: []string{"townhouse", "condo", "apartment"}, Score: -10},
}

// Submission-timing bonuses. Weekend takes precedence over hour-of-day;
// exactly one bonus applies.
const (
	weekendBonus  = 5  // people research on weekends
	businessBonus = 15 // business hours = serious inquiry
	eveningBonus  = 10 // evening research = interested

	businessStartHour = 9
	businessEndHour   = 17
	eveningStartHour  = 18
	eveningEndHour    = 22
)
