package analysis

// trends.go: análisis exploratorio de la historia de sorteos.

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// hotStreakGap es la distancia máxima entre apariciones que cuenta como racha.
const hotStreakGap = 3

// maxBuildupLookback acota la búsqueda hacia atrás de ventanas de buildup.
const maxBuildupLookback = 50

// Streak resume las rachas de un número.
type Streak struct {
	Number int `json:"number"`
	// MaxGap es la mayor cantidad de rondas transcurridas hasta una aparición,
	// contando la ronda de la aparición.
	MaxGap int `json:"max_gap"`
	// HotStreaks cuenta las reapariciones a <= 3 rondas de la anterior.
	HotStreaks int `json:"hot_streaks"`
}

// Streaks calcula las rachas de los 40 números, en orden de número.
func Streaks(rounds []domain.Round) []Streak {
	var gap, maxGap, hot [domain.MaxNumber + 1]int
	lastSeen := [domain.MaxNumber + 1]int{}
	for i := range lastSeen {
		lastSeen[i] = -1
	}

	for idx, r := range rounds {
		for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
			gap[n]++
		}
		for _, n := range r.Drawn.Numbers() {
			maxGap[n] = max(maxGap[n], gap[n])
			if lastSeen[n] >= 0 && idx-lastSeen[n] <= hotStreakGap {
				hot[n]++
			}
			gap[n] = 0
			lastSeen[n] = idx
		}
	}

	out := make([]Streak, 0, domain.MaxNumber)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		out = append(out, Streak{Number: n, MaxGap: maxGap[n], HotStreaks: hot[n]})
	}
	return out
}

// Coverage describe cuánto tarda la historia en cubrir los 40 números.
type Coverage struct {
	// RoundsToSeeAll es 0 si la historia nunca cubre los 40 números.
	RoundsToSeeAll int `json:"rounds_to_see_all"`
	// NewPerRound cuenta los números vistos por primera vez en cada ronda,
	// hasta la ronda que completa la cobertura.
	NewPerRound []int `json:"new_per_round"`
	// FirstSeen es el índice de la primera aparición de cada número (-1 si nunca).
	FirstSeen [domain.MaxNumber + 1]int `json:"-"`
}

// CoverageOf recorre la historia hasta ver los 40 números.
func CoverageOf(rounds []domain.Round) Coverage {
	var c Coverage
	for i := range c.FirstSeen {
		c.FirstSeen[i] = -1
	}
	var seen domain.NumberSet
	for idx, r := range rounds {
		fresh := r.Drawn &^ seen
		for _, n := range fresh.Numbers() {
			c.FirstSeen[n] = idx
		}
		seen = seen.Union(r.Drawn)
		c.NewPerRound = append(c.NewPerRound, fresh.Len())
		if seen.Len() == domain.MaxNumber {
			c.RoundsToSeeAll = idx + 1
			break
		}
	}
	return c
}

// FirstAppearance es la ronda (0-based) en la que un número se vio por primera vez.
type FirstAppearance struct {
	Number int `json:"number"`
	Round  int `json:"round"`
}

// AppearanceOrder devuelve los n números vistos antes y los n vistos más
// tarde. Los números nunca vistos se omiten. Empates por número ascendente.
func (c Coverage) AppearanceOrder(n int) (earliest, latest []FirstAppearance) {
	var all []FirstAppearance
	for num := domain.MinNumber; num <= domain.MaxNumber; num++ {
		if c.FirstSeen[num] >= 0 {
			all = append(all, FirstAppearance{Number: num, Round: c.FirstSeen[num]})
		}
	}
	earliest = slices.Clone(all)
	slices.SortStableFunc(earliest, func(a, b FirstAppearance) int { return a.Round - b.Round })
	latest = slices.Clone(all)
	slices.SortStableFunc(latest, func(a, b FirstAppearance) int { return b.Round - a.Round })
	if n >= 0 {
		earliest = earliest[:min(n, len(earliest))]
		latest = latest[:min(n, len(latest))]
	}
	return earliest, latest
}

// BlockRate es el promedio de números nuevos por ronda en un bloque de rondas.
type BlockRate struct {
	From   int     `json:"from"` // 0-based, inclusivo
	To     int     `json:"to"`   // exclusivo
	AvgNew float64 `json:"avg_new"`
}

// DiscoveryRate promedia NewPerRound en bloques de `block` rondas dentro de
// las primeras `limit` rondas. El último bloque puede ser más corto.
func (c Coverage) DiscoveryRate(block, limit int) []BlockRate {
	if block <= 0 {
		return nil
	}
	end := min(limit, len(c.NewPerRound))
	var out []BlockRate
	for from := 0; from < end; from += block {
		to := min(from+block, len(c.NewPerRound))
		sum := 0
		for _, n := range c.NewPerRound[from:to] {
			sum += n
		}
		out = append(out, BlockRate{From: from, To: to, AvgNew: float64(sum) / float64(to-from)})
	}
	return out
}

// RoundDiscovery es la cantidad de números nuevos que trajo una ronda.
type RoundDiscovery struct {
	Round int `json:"round"`
	New   int `json:"new"`
}

// TopDiscoveryRounds devuelve las n rondas con más números nuevos, sin las
// que no trajeron ninguno. Empates por ronda ascendente.
func (c Coverage) TopDiscoveryRounds(n int) []RoundDiscovery {
	var out []RoundDiscovery
	for idx, fresh := range c.NewPerRound {
		if fresh > 0 {
			out = append(out, RoundDiscovery{Round: idx, New: fresh})
		}
	}
	slices.SortStableFunc(out, func(a, b RoundDiscovery) int { return b.New - a.New })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LeadUp resume las rondas previas a la primera aparición de un número raro.
type LeadUp struct {
	Number    int        `json:"number"`
	FirstSeen int        `json:"first_seen"`
	Lookback  int        `json:"lookback"`
	Common    []Follower `json:"common"`
}

// LeadUpOptions parametriza RareLeadUps.
type LeadUpOptions struct {
	// Rare es cuántos de los números vistos más tarde se analizan.
	Rare int
	// Lookback es la cantidad de rondas previas consideradas.
	Lookback int
	// Top acota los números frecuentes devueltos por cada número raro.
	Top int
}

// DefaultLeadUpOptions: los 5 más tardíos, 5 rondas previas, 10 frecuentes.
func DefaultLeadUpOptions() LeadUpOptions {
	return LeadUpOptions{Rare: 5, Lookback: 5, Top: 10}
}

// RareLeadUps cuenta, para cada uno de los números que más tardaron en
// aparecer, qué números salieron con más frecuencia en las rondas previas a
// su primera aparición. Los que aparecen antes de Lookback rondas se omiten.
func RareLeadUps(rounds []domain.Round, cov Coverage, opts LeadUpOptions) []LeadUp {
	_, rare := cov.AppearanceOrder(opts.Rare)

	var out []LeadUp
	for _, r := range rare {
		if r.Round < opts.Lookback || r.Round > len(rounds) {
			continue
		}
		var counts [domain.MaxNumber + 1]int
		for _, prev := range rounds[r.Round-opts.Lookback : r.Round] {
			for _, n := range prev.Drawn.Numbers() {
				counts[n]++
			}
		}

		var common []Follower
		for num := domain.MinNumber; num <= domain.MaxNumber; num++ {
			if counts[num] > 0 {
				common = append(common, Follower{Number: num, Count: counts[num]})
			}
		}
		slices.SortStableFunc(common, func(a, b Follower) int { return b.Count - a.Count })
		if opts.Top >= 0 && len(common) > opts.Top {
			common = common[:opts.Top]
		}
		out = append(out, LeadUp{Number: r.Number, FirstSeen: r.Round, Lookback: opts.Lookback, Common: common})
	}
	return out
}

// PairCount es un par de números con su cantidad de rondas en común.
type PairCount struct {
	A     int     `json:"a"`
	B     int     `json:"b"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// TopPairs devuelve los n pares sorteados juntos con más frecuencia.
// Empates por par ascendente.
func TopPairs(rounds []domain.Round, n int) []PairCount {
	var counts [domain.MaxNumber + 1][domain.MaxNumber + 1]int
	for _, r := range rounds {
		nums := r.Drawn.Numbers()
		for i, a := range nums {
			for _, b := range nums[i+1:] {
				counts[a][b]++
			}
		}
	}

	var pairs []PairCount
	for a := domain.MinNumber; a <= domain.MaxNumber; a++ {
		for b := a + 1; b <= domain.MaxNumber; b++ {
			if counts[a][b] == 0 {
				continue
			}
			pairs = append(pairs, PairCount{A: a, B: b, Count: counts[a][b], Pct: pct(counts[a][b], len(rounds))})
		}
	}
	slices.SortStableFunc(pairs, func(x, y PairCount) int { return y.Count - x.Count })
	if n >= 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// Follower es un número visto en la ronda siguiente a otro.
type Follower struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// FollowUps devuelve los n números más frecuentes en la ronda siguiente a
// cada aparición de number.
func FollowUps(rounds []domain.Round, number, n int) []Follower {
	var counts [domain.MaxNumber + 1]int
	for i := 0; i+1 < len(rounds); i++ {
		if !rounds[i].Drawn.Has(number) {
			continue
		}
		for _, next := range rounds[i+1].Drawn.Numbers() {
			counts[next]++
		}
	}

	var out []Follower
	for num := domain.MinNumber; num <= domain.MaxNumber; num++ {
		if counts[num] > 0 {
			out = append(out, Follower{Number: num, Count: counts[num]})
		}
	}
	slices.SortStableFunc(out, func(a, b Follower) int { return b.Count - a.Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Category clasifica el comportamiento de completado de un patrón.
type Category string

const (
	// CategoryTeaser: muchos casi-aciertos y pocos completados.
	CategoryTeaser Category = "teaser"
	// CategoryBuilder: acumula buildups y luego completa varias veces.
	CategoryBuilder Category = "builder"
	// CategoryConsistent: completa con regularidad sin demasiado ruido.
	CategoryConsistent Category = "consistent"
)

// PatternBehavior son las métricas de completado de un patrón en toda la historia.
type PatternBehavior struct {
	Pattern             domain.NumberSet `json:"pattern"`
	Occurrences         int              `json:"occurrences"`
	Completions         int              `json:"completions"`
	NearMisses          int              `json:"near_misses"`  // K-1 aciertos
	PartialHits         int              `json:"partial_hits"` // K-2..K-1 aciertos
	BuildupsBeforeFirst int              `json:"buildups_before_first"`
	AvgBuildupHits      float64          `json:"avg_buildup_hits"`
	CompletionGaps      []int            `json:"completion_gaps"`
	AvgGap              float64          `json:"avg_gap"`
	MinGap              int              `json:"min_gap"`
	TeaseRatio          float64          `json:"tease_ratio"`
}

// Is devuelve true si el patrón pertenece a la categoría.
func (b PatternBehavior) Is(c Category) bool {
	switch c {
	case CategoryTeaser:
		return b.TeaseRatio >= 6 && b.Completions <= 11
	case CategoryBuilder:
		return b.Completions >= 11 && b.BuildupsBeforeFirst >= 5 && b.AvgGap > 0
	case CategoryConsistent:
		return b.Completions >= 10 && b.TeaseRatio <= 5
	}
	return false
}

// QuickHits cuenta los intervalos entre completados de como mucho `within` rondas.
func (b PatternBehavior) QuickHits(within int) int {
	n := 0
	for _, g := range b.CompletionGaps {
		if g <= within {
			n++
		}
	}
	return n
}

// BehaviorOptions parametriza AnalyzeBehavior.
type BehaviorOptions struct {
	PatternSize    int
	MinOccurrences int
	// Limit acota cada categoría del informe. <= 0 no acota.
	Limit int
}

// BehaviorReport es el resultado de AnalyzeBehavior.
type BehaviorReport struct {
	UniquePatterns   int               `json:"unique_patterns"`
	FrequentPatterns int               `json:"frequent_patterns"`
	Analyzed         []PatternBehavior `json:"-"`
	Teasers          []PatternBehavior `json:"teasers"`
	Builders         []PatternBehavior `json:"builders"`
	Consistent       []PatternBehavior `json:"consistent"`
	// BuildupWindows cuenta, por longitud, las rachas de rondas con >= K-2
	// aciertos inmediatamente anteriores a un completado.
	BuildupWindows   map[int]int `json:"buildup_windows"`
	AvgBuildupWindow float64     `json:"avg_buildup_window"`
}

// AnalyzeBehavior clasifica los patrones de tamaño K que aparecen al menos
// MinOccurrences veces en la historia.
func AnalyzeBehavior(rounds []domain.Round, opts BehaviorOptions) (BehaviorReport, error) {
	if opts.PatternSize < 1 || opts.PatternSize > domain.MaxPatternSize {
		return BehaviorReport{}, fmt.Errorf("analysis.AnalyzeBehavior: %w: pattern size %d", domain.ErrInvalidConfig, opts.PatternSize)
	}
	size := opts.PatternSize

	frequency := make(map[domain.NumberSet]int)
	for _, r := range rounds {
		domain.ForEachCombination(r.Drawn.Numbers(), size, func(p domain.NumberSet) {
			frequency[p]++
		})
	}

	var frequent []domain.NumberSet
	for p, count := range frequency {
		if count >= opts.MinOccurrences {
			frequent = append(frequent, p)
		}
	}
	slices.Sort(frequent)

	drawn := domain.DrawnSets(rounds)
	report := BehaviorReport{
		UniquePatterns:   len(frequency),
		FrequentPatterns: len(frequent),
		BuildupWindows:   make(map[int]int),
	}

	windowSum, windowCount := 0, 0
	for _, p := range frequent {
		b := behaviorOf(p, drawn)
		b.Occurrences = frequency[p]
		if b.NearMisses+b.Completions < opts.MinOccurrences {
			continue
		}
		report.Analyzed = append(report.Analyzed, b)

		for _, w := range buildupWindows(p, drawn) {
			report.BuildupWindows[w]++
			windowSum += w
			windowCount++
		}
	}
	if windowCount > 0 {
		report.AvgBuildupWindow = float64(windowSum) / float64(windowCount)
	}

	report.Teasers = selectCategory(report.Analyzed, CategoryTeaser, func(a, b PatternBehavior) int {
		return cmp.Compare(b.TeaseRatio, a.TeaseRatio)
	}, opts.Limit)
	report.Builders = selectCategory(report.Analyzed, CategoryBuilder, func(a, b PatternBehavior) int {
		if c := cmp.Compare(b.Completions, a.Completions); c != 0 {
			return c
		}
		return cmp.Compare(a.AvgGap, b.AvgGap)
	}, opts.Limit)
	report.Consistent = selectCategory(report.Analyzed, CategoryConsistent, func(a, b PatternBehavior) int {
		return cmp.Compare(b.Completions, a.Completions)
	}, opts.Limit)

	return report, nil
}

// TopBuildupWindows devuelve las longitudes de buildup más comunes.
func (r BehaviorReport) TopBuildupWindows(n int) [][2]int {
	out := make([][2]int, 0, len(r.BuildupWindows))
	for _, w := range slices.Sorted(maps.Keys(r.BuildupWindows)) {
		out = append(out, [2]int{w, r.BuildupWindows[w]})
	}
	slices.SortStableFunc(out, func(a, b [2]int) int { return b[1] - a[1] })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func behaviorOf(p domain.NumberSet, drawn []domain.NumberSet) PatternBehavior {
	size := p.Len()
	b := PatternBehavior{Pattern: p}

	first := -1
	buildupHits := 0
	var completions []int
	for idx, d := range drawn {
		hits := domain.HitCount(p, d)
		switch {
		case hits == size:
			completions = append(completions, idx)
			if first < 0 {
				first = idx
			}
		case hits == size-1:
			b.NearMisses++
			b.PartialHits++
		case hits == size-2:
			b.PartialHits++
		}
		if first < 0 && hits >= size-2 && hits < size {
			b.BuildupsBeforeFirst++
			buildupHits += hits
		}
	}

	// Sin completados no hay "antes del primero".
	if first < 0 {
		b.BuildupsBeforeFirst, buildupHits = 0, 0
	}
	if b.BuildupsBeforeFirst > 0 {
		b.AvgBuildupHits = float64(buildupHits) / float64(b.BuildupsBeforeFirst)
	}

	b.Completions = len(completions)
	for i := 1; i < len(completions); i++ {
		b.CompletionGaps = append(b.CompletionGaps, completions[i]-completions[i-1])
	}
	if len(b.CompletionGaps) > 0 {
		sum := 0
		b.MinGap = b.CompletionGaps[0]
		for _, g := range b.CompletionGaps {
			sum += g
			b.MinGap = min(b.MinGap, g)
		}
		b.AvgGap = float64(sum) / float64(len(b.CompletionGaps))
	}
	b.TeaseRatio = float64(b.NearMisses) / float64(max(b.Completions, 1))
	return b
}

// buildupWindows mide, para cada completado, cuántas rondas consecutivas
// inmediatamente anteriores tuvieron >= K-2 aciertos (hasta 50).
func buildupWindows(p domain.NumberSet, drawn []domain.NumberSet) []int {
	size := p.Len()
	var out []int
	for idx, d := range drawn {
		if !domain.IsComplete(p, d) {
			continue
		}
		window := 0
		for back := 1; back <= maxBuildupLookback && back <= idx; back++ {
			if domain.HitCount(p, drawn[idx-back]) < size-2 {
				break
			}
			window = back
		}
		if window > 0 {
			out = append(out, window)
		}
	}
	return out
}

func selectCategory(all []PatternBehavior, c Category, order func(a, b PatternBehavior) int, limit int) []PatternBehavior {
	var out []PatternBehavior
	for _, b := range all {
		if b.Is(c) {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, order)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
