package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acarvalho/p2p-quality/internal/domain"
)

// Generator produces one month of synthetic P2P payments data with
// deliberately injected anomalies: temporal inconsistencies, duplicate
// transaction ids, NULL critical fields, orphan foreign keys and
// out-of-window timestamps. Adoption is skewed by country so downstream
// analytics have signal to find, not just noise.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// Dataset is a fully materialized raw snapshot.
type Dataset struct {
	Users        []domain.User
	Transactions []domain.Transaction
	Events       []domain.AppEvent
}

// userMeta keeps per-user generation state that never leaves this package.
type userMeta struct {
	signup        *time.Time
	country       string
	isFeatureUser bool
}

var (
	firstNames = []string{
		"Alex", "Sam", "Jordan", "Taylor", "Casey", "Jamie", "Riley", "Morgan", "Avery", "Cameron",
		"Charlie", "Drew", "Emerson", "Finley", "Hayden", "Jules", "Kai", "Logan", "Noah", "Quinn",
	}
	lastNames = []string{
		"Martin", "Bernard", "Thomas", "Petit", "Robert", "Richard", "Durand", "Dubois", "Moreau", "Laurent",
		"Simon", "Michel", "Lefevre", "Garcia", "David", "Bertrand", "Roux", "Vincent", "Fournier", "Morel",
	}
	currencies = []string{"BTC", "EUR", "USD"}
	eventTypes = []string{"login", "page_view", "button_click", "logout"}
	pages      = []string{"/home", "/wallet", "/send", "/receive", "/settings", "/help", "/profile"}
	buttons    = []string{"send_now", "request_money", "add_card", "logout", "support_chat", "confirm", "cancel"}
	devices    = []string{"android", "ios", "web"}
	osNames    = []string{"Android 14", "Android 13", "iOS 26", "iOS 18", "Windows 11", "macOS 14", "Ubuntu 22.04"}
)

// Scenario knobs: FR drives adoption and volume, CH sends few but very large
// transfers, activity and amounts trend upward through the month.
const (
	topAdoptionCountry      = "FR"
	vipCountry              = "CH"
	sameCountryReceiverProb = 0.65
	txnTrendStrength        = 2.5
	amountTrendStrength     = 0.8
)

var countryWeights = []struct {
	country string
	weight  float64
}{
	{"FR", 0.38}, {"PT", 0.12}, {"ES", 0.10}, {"DE", 0.10}, {"IT", 0.10},
	{"NL", 0.07}, {"BE", 0.06}, {"GB", 0.05}, {"IE", 0.01}, {"CH", 0.01},
}

func adoptionRate(country string) float64 {
	switch country {
	case topAdoptionCountry:
		return 0.75
	case vipCountry:
		return 0.08
	default:
		return 0.25
	}
}

func amountMultiplier(country string) float64 {
	switch country {
	case topAdoptionCountry:
		return 1.10
	case vipCountry:
		return 8.00
	default:
		return 1.00
	}
}

// New creates a generator seeded from cfg.
func New(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// newID draws a UUID from the seeded RNG, so ids reproduce for a fixed seed
// just like every other generated value.
func (g *Generator) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(g.rng)).String()
}

// Generate produces the full raw snapshot for the configured month.
func (g *Generator) Generate() (*Dataset, error) {
	monthStart, monthEnd, err := monthBounds(g.cfg.Month)
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	users, meta := g.generateUsers(monthStart, monthEnd)
	transactions := g.generateTransactions(monthStart, monthEnd, meta)
	events := g.generateEvents(monthStart, monthEnd)

	return &Dataset{Users: users, Transactions: transactions, Events: events}, nil
}

func (g *Generator) generateUsers(monthStart, monthEnd time.Time) ([]domain.User, map[int64]*userMeta) {
	users := make([]domain.User, 0, g.cfg.Users)
	meta := make(map[int64]*userMeta, g.cfg.Users)

	for id := int64(1); id <= int64(g.cfg.Users); id++ {
		fn := firstNames[g.rng.Intn(len(firstNames))]
		ln := lastNames[g.rng.Intn(len(lastNames))]
		country := g.pickCountry()

		u := domain.User{
			UserID:    id,
			FirstName: strPtr(fn),
			LastName:  strPtr(ln),
			Country:   strPtr(country),
		}
		m := &userMeta{
			country:       country,
			isFeatureUser: g.rng.Float64() < adoptionRate(country),
		}

		if g.rng.Float64() >= g.cfg.NullEmailRate {
			email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(fn), strings.ToLower(ln), 10+g.rng.Intn(9990))
			u.Email = strPtr(email)
		}
		if g.rng.Float64() >= g.cfg.NullSignupRate {
			signup := g.randTime(monthStart, monthEnd)
			u.SignupAt = strPtr(domain.FormatTimestamp(signup))
			m.signup = &signup
		}

		users = append(users, u)
		meta[id] = m
	}
	return users, meta
}

func (g *Generator) generateTransactions(monthStart, monthEnd time.Time, meta map[int64]*userMeta) []domain.Transaction {
	n := g.cfg.Transactions
	nUsers := int64(g.cfg.Users)
	days := int(monthEnd.Sub(monthStart).Hours() / 24)

	featureUsers := make([]int64, 0, len(meta))
	for id := int64(1); id <= nUsers; id++ {
		if meta[id].isFeatureUser {
			featureUsers = append(featureUsers, id)
		}
	}
	if len(featureUsers) < 10 {
		featureUsers = featureUsers[:0]
		for id := int64(1); id <= nUsers; id++ {
			featureUsers = append(featureUsers, id)
		}
	}

	txns := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		sender := g.pickSender(featureUsers, meta)
		receiver := g.pickReceiver(sender, nUsers, meta)

		dayIdx := g.pickTrendedDay(days)
		created := g.randTimeInDay(monthStart, monthEnd, dayIdx)

		// Baseline rows respect both signup instants; violations are
		// injected afterwards.
		floor := monthStart
		if s := meta[sender].signup; s != nil && s.After(floor) {
			floor = *s
		}
		if s := meta[receiver].signup; s != nil && s.After(floor) {
			floor = *s
		}
		if created.Before(floor) {
			created = g.randTime(floor, monthEnd)
		}

		base := math.Pow(10, 0.3+g.rng.Float64()*1.9) // ~2..160
		timeScale := 1.0 + amountTrendStrength*float64(dayIdx)/math.Max(1, float64(days-1))
		amount := round2(base * timeScale * amountMultiplier(meta[sender].country))

		txns = append(txns, domain.Transaction{
			TransactionID:  strPtr(g.newID()),
			SenderUserID:   intPtr(sender),
			ReceiverUserID: intPtr(receiver),
			Amount:         floatPtr(amount),
			Currency:       strPtr(g.pickWeighted(currencies, []float64{0.85, 0.10, 0.05})),
			Status:         strPtr(g.pickWeighted([]string{"completed", "pending", "failed"}, []float64{0.90, 0.07, 0.03})),
			CreatedAt:      strPtr(domain.FormatTimestamp(created)),
		})
	}

	g.injectBeforeSignup(txns, monthStart, monthEnd, meta)
	g.injectNullAmounts(txns)
	g.injectDuplicateIDs(txns)
	return txns
}

// injectBeforeSignup rewires some rows to a late-signup user and backdates
// created_at before that signup.
func (g *Generator) injectBeforeSignup(txns []domain.Transaction, monthStart, monthEnd time.Time, meta map[int64]*userMeta) {
	var eligible []int64
	cutoff := monthStart.AddDate(0, 0, 3)
	// Walk ids in order, not map order, so the sample reproduces for a
	// fixed seed.
	for id := int64(1); id <= int64(len(meta)); id++ {
		if m := meta[id]; m.signup != nil && m.signup.After(cutoff) {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return
	}

	count := atLeastOne(len(txns), g.cfg.BeforeSignupRate)
	for _, i := range g.sampleIndexes(len(txns), count) {
		bad := eligible[g.rng.Intn(len(eligible))]
		if g.rng.Float64() < 0.5 {
			txns[i].SenderUserID = intPtr(bad)
		} else {
			txns[i].ReceiverUserID = intPtr(bad)
		}
		forcedEnd := meta[bad].signup.Add(-time.Minute)
		if forcedEnd.Before(monthStart.Add(time.Hour)) {
			forcedEnd = monthStart.Add(time.Hour)
		}
		txns[i].CreatedAt = strPtr(domain.FormatTimestamp(g.randTime(monthStart, forcedEnd)))
	}
}

func (g *Generator) injectNullAmounts(txns []domain.Transaction) {
	count := atLeastOne(len(txns), g.cfg.NullAmountRate)
	for _, i := range g.sampleIndexes(len(txns), count) {
		txns[i].Amount = nil
	}
}

// injectDuplicateIDs copies an earlier row's transaction_id onto later rows,
// simulating client retries.
func (g *Generator) injectDuplicateIDs(txns []domain.Transaction) {
	if len(txns) <= 2 {
		return
	}
	count := atLeastOne(len(txns), g.cfg.DuplicateIDRate)
	for _, i := range g.sampleIndexes(len(txns)-1, count) {
		target := i + 1
		source := g.rng.Intn(target)
		txns[target].TransactionID = txns[source].TransactionID
	}
}

func (g *Generator) generateEvents(monthStart, monthEnd time.Time) []domain.AppEvent {
	n := g.cfg.Events
	nUsers := int64(g.cfg.Users)

	events := make([]domain.AppEvent, 0, n)
	for i := 0; i < n; i++ {
		eventType := eventTypes[g.rng.Intn(len(eventTypes))]
		e := domain.AppEvent{
			EventID:   g.newID(),
			UserID:    intPtr(1 + g.rng.Int63n(nUsers)),
			EventType: strPtr(eventType),
			EventTS:   strPtr(domain.FormatTimestamp(g.randTime(monthStart, monthEnd))),
			SessionID: strPtr(g.newID()),
			Page:      strPtr(pages[g.rng.Intn(len(pages))]),
			Device:    strPtr(devices[g.rng.Intn(len(devices))]),
			OS:        strPtr(osNames[g.rng.Intn(len(osNames))]),
			IP:        strPtr(g.randIP()),
		}
		if eventType == "button_click" {
			e.ButtonID = strPtr(buttons[g.rng.Intn(len(buttons))])
		}
		events = append(events, e)
	}

	// Orphan user ids.
	for _, i := range g.sampleIndexes(n, atLeastOne(n, g.cfg.OrphanUserRate)) {
		events[i].UserID = intPtr(nUsers + 1 + g.rng.Int63n(50))
	}
	// Missing event type.
	for _, i := range g.sampleIndexes(n, atLeastOne(n, g.cfg.NullEventTypeRate)) {
		events[i].EventType = nil
	}
	// Out-of-window timestamps: clock drift before the month or delayed
	// ingestion after it.
	for _, i := range g.sampleIndexes(n, atLeastOne(n, g.cfg.OutOfWindowRate)) {
		var ts time.Time
		if g.rng.Float64() < 0.5 {
			ts = g.randTime(monthStart.AddDate(0, 0, -5), monthStart)
		} else {
			ts = g.randTime(monthEnd, monthEnd.AddDate(0, 0, 5))
		}
		events[i].EventTS = strPtr(domain.FormatTimestamp(ts))
	}
	return events
}

func (g *Generator) pickCountry() string {
	total := 0.0
	for _, cw := range countryWeights {
		total += cw.weight
	}
	r := g.rng.Float64() * total
	for _, cw := range countryWeights {
		r -= cw.weight
		if r <= 0 {
			return cw.country
		}
	}
	return countryWeights[len(countryWeights)-1].country
}

func (g *Generator) pickSender(featureUsers []int64, meta map[int64]*userMeta) int64 {
	weights := make([]float64, len(featureUsers))
	total := 0.0
	for i, id := range featureUsers {
		switch meta[id].country {
		case topAdoptionCountry:
			weights[i] = 3.0
		case vipCountry:
			weights[i] = 0.4
		default:
			weights[i] = 1.0
		}
		total += weights[i]
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return featureUsers[i]
		}
	}
	return featureUsers[len(featureUsers)-1]
}

func (g *Generator) pickReceiver(sender, nUsers int64, meta map[int64]*userMeta) int64 {
	if g.rng.Float64() < sameCountryReceiverProb {
		country := meta[sender].country
		var sameCountry []int64
		for id := int64(1); id <= nUsers; id++ {
			if id != sender && meta[id].country == country {
				sameCountry = append(sameCountry, id)
			}
		}
		if len(sameCountry) > 0 {
			return sameCountry[g.rng.Intn(len(sameCountry))]
		}
	}
	r := 1 + g.rng.Int63n(nUsers)
	for r == sender {
		r = 1 + g.rng.Int63n(nUsers)
	}
	return r
}

// pickTrendedDay weights later days more heavily so activity rises through
// the month.
func (g *Generator) pickTrendedDay(days int) int {
	weights := make([]float64, days)
	total := 0.0
	for i := range weights {
		weights[i] = 1.0 + txnTrendStrength*float64(i)/math.Max(1, float64(days-1))
		total += weights[i]
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return days - 1
}

func (g *Generator) pickWeighted(values []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// randTime returns a uniform random instant in [start, end).
func (g *Generator) randTime(start, end time.Time) time.Time {
	seconds := int64(end.Sub(start).Seconds())
	if seconds <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(seconds)) * time.Second)
}

func (g *Generator) randTimeInDay(monthStart, monthEnd time.Time, dayIdx int) time.Time {
	dayStart := monthStart.AddDate(0, 0, dayIdx)
	dayEnd := dayStart.AddDate(0, 0, 1)
	if dayEnd.After(monthEnd) {
		dayEnd = monthEnd
	}
	return g.randTime(dayStart, dayEnd)
}

func (g *Generator) randIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", 1+g.rng.Intn(255), g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(256))
}

// sampleIndexes draws count distinct indexes from [0, n) in random order.
func (g *Generator) sampleIndexes(n, count int) []int {
	if count > n {
		count = n
	}
	perm := g.rng.Perm(n)
	return perm[:count]
}

func atLeastOne(n int, rate float64) int {
	if n == 0 {
		return 0
	}
	c := int(float64(n) * rate)
	if c < 1 {
		c = 1
	}
	return c
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func strPtr(s string) *string      { return &s }
func intPtr(i int64) *int64        { return &i }
func floatPtr(f float64) *float64  { return &f }
