package notify

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alejandrodnm/kenolab/internal/analysis"
	"github.com/olekukonko/tablewriter"
)

// PrintStreaks imprime los números con mayor sequía y con más rachas hot.
func (c *Console) PrintStreaks(streaks []analysis.Streak) {
	c.section("Number streaks")
	if len(streaks) == 0 {
		fmt.Fprintln(c.out, "  No history")
		return
	}

	byGap := slices.Clone(streaks)
	slices.SortStableFunc(byGap, func(a, b analysis.Streak) int { return b.MaxGap - a.MaxGap })
	byHot := slices.Clone(streaks)
	slices.SortStableFunc(byHot, func(a, b analysis.Streak) int { return b.HotStreaks - a.HotStreaks })

	n := min(c.top, len(streaks))
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Longest gap", "Rounds", "Most hot streaks", "Streaks")
	for i := 0; i < n; i++ {
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", byGap[i].Number),
			fmt.Sprintf("%d", byGap[i].MaxGap),
			fmt.Sprintf("%d", byHot[i].Number),
			fmt.Sprintf("%d", byHot[i].HotStreaks),
		)
	}
	table.Render()
}

// discoveryBlock y discoveryLimit definen la tabla de ritmo de descubrimiento.
const (
	discoveryBlock = 10
	discoveryLimit = 50
)

// PrintCoverage imprime cuánto tarda la historia en ver los 40 números y a
// qué ritmo aparecen los nuevos.
func (c *Console) PrintCoverage(cov analysis.Coverage) {
	c.section("Coverage")
	if cov.RoundsToSeeAll == 0 {
		fmt.Fprintln(c.out, "  History never covers all 40 numbers")
	} else {
		fmt.Fprintf(c.out, "  All numbers seen after %d rounds\n", cov.RoundsToSeeAll)
	}
	if len(cov.NewPerRound) == 0 {
		return
	}

	parts := make([]string, 0, len(cov.NewPerRound))
	for _, n := range cov.NewPerRound {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	fmt.Fprintf(c.out, "  New numbers per round: %s\n", strings.Join(parts, " "))

	table := tablewriter.NewWriter(c.out)
	table.Header("Rounds", "Avg new")
	for _, b := range cov.DiscoveryRate(discoveryBlock, discoveryLimit) {
		table.Append(fmt.Sprintf("%d-%d", b.From+1, b.To), fmt.Sprintf("%.2f", b.AvgNew))
	}
	table.Render()

	top := cov.TopDiscoveryRounds(5)
	if len(top) == 0 {
		return
	}
	parts = parts[:0]
	for _, r := range top {
		parts = append(parts, fmt.Sprintf("round %d (%d new)", r.Round+1, r.New))
	}
	fmt.Fprintf(c.out, "  Most discoveries: %s\n", strings.Join(parts, ", "))
}

// PrintAppearanceOrder imprime los números vistos primero y los vistos al final.
func (c *Console) PrintAppearanceOrder(cov analysis.Coverage) {
	c.section("Appearance order")
	earliest, latest := cov.AppearanceOrder(c.top)
	if len(earliest) == 0 {
		fmt.Fprintln(c.out, "  No history")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Earliest", "Round", "Latest", "Round")
	for i := range earliest {
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", earliest[i].Number),
			fmt.Sprintf("%d", earliest[i].Round+1),
			fmt.Sprintf("%d", latest[i].Number),
			fmt.Sprintf("%d", latest[i].Round+1),
		)
	}
	table.Render()
}

// PrintRareLeadUps imprime qué salió antes de la primera aparición de los
// números más tardíos.
func (c *Console) PrintRareLeadUps(leadUps []analysis.LeadUp) {
	c.section("Before rare numbers appear")
	if len(leadUps) == 0 {
		fmt.Fprintln(c.out, "  No late numbers with enough previous rounds")
		return
	}
	for _, l := range leadUps {
		parts := make([]string, 0, len(l.Common))
		for _, f := range l.Common {
			parts = append(parts, fmt.Sprintf("%d (%dx)", f.Number, f.Count))
		}
		fmt.Fprintf(c.out, "  %d (first in round %d), %d rounds before: %s\n",
			l.Number, l.FirstSeen+1, l.Lookback, strings.Join(parts, ", "))
	}
}

// PrintPairs imprime los pares más frecuentes.
func (c *Console) PrintPairs(pairs []analysis.PairCount) {
	c.section("Top pairs")
	table := tablewriter.NewWriter(c.out)
	table.Header("Pair", "Rounds", "Pct")
	for _, p := range pairs {
		table.Append(
			fmt.Sprintf("%d-%d", p.A, p.B),
			fmt.Sprintf("%d", p.Count),
			fmt.Sprintf("%.2f%%", p.Pct),
		)
	}
	table.Render()
}

// PrintFollowUps imprime los números más vistos en la ronda siguiente a number.
func (c *Console) PrintFollowUps(number int, followers []analysis.Follower) {
	c.section(fmt.Sprintf("After %d is drawn", number))
	if len(followers) == 0 {
		fmt.Fprintln(c.out, "  No follow-up rounds")
		return
	}
	parts := make([]string, 0, len(followers))
	for _, f := range followers {
		parts = append(parts, fmt.Sprintf("%d (%dx)", f.Number, f.Count))
	}
	fmt.Fprintf(c.out, "  %s\n", strings.Join(parts, ", "))
}

// PrintBehavior imprime la clasificación de patrones por comportamiento.
func (c *Console) PrintBehavior(size int, report analysis.BehaviorReport) {
	c.section(fmt.Sprintf("Pattern behaviour (K=%d)", size))
	fmt.Fprintf(c.out, "  Unique patterns: %d, frequent: %d\n", report.UniquePatterns, report.FrequentPatterns)

	c.behaviorTable("Teasers (many near misses, few completions)", report.Teasers)
	c.behaviorTable("Builders (buildup then repeated completions)", report.Builders)
	c.behaviorTable("Consistent (regular completions)", report.Consistent)

	if len(report.BuildupWindows) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n  Avg buildup window: %.2f rounds\n", report.AvgBuildupWindow)
	table := tablewriter.NewWriter(c.out)
	table.Header("Window", "Completions")
	for _, w := range report.TopBuildupWindows(c.top) {
		table.Append(fmt.Sprintf("%d", w[0]), fmt.Sprintf("%d", w[1]))
	}
	table.Render()
}

func (c *Console) behaviorTable(title string, rows []analysis.PatternBehavior) {
	fmt.Fprintf(c.out, "\n  %s\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "  none")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Pattern", "Seen", "Compl", "Near", "Tease", "Pre-buildups", "Avg gap", "Quick")
	for _, b := range rows {
		table.Append(
			b.Pattern.String(),
			fmt.Sprintf("%d", b.Occurrences),
			fmt.Sprintf("%d", b.Completions),
			fmt.Sprintf("%d", b.NearMisses),
			fmt.Sprintf("%.1f", b.TeaseRatio),
			fmt.Sprintf("%d", b.BuildupsBeforeFirst),
			fmt.Sprintf("%.1f", b.AvgGap),
			fmt.Sprintf("%d", b.QuickHits(5)),
		)
	}
	table.Render()
}
