package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough BookmarkType = "hunt_breakthrough"
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkPreyCrash        BookmarkType = "prey_crash"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkExtinction       BookmarkType = "extinction"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Step        int          `csv:"step"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"step", b.Step,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentFoxMin       int // minimum fox count in recent history
	recentRabbitPeak   int // peak rabbit count in recent history
	stableWindowsCount int // consecutive windows with stable populations
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkHuntBreakthrough,
			bd.checkPredatorRecovery,
			bd.checkPreyCrash,
			bd.checkStableEcosystem,
		} {
			if b := check(stats); b != nil {
				b.RunID = stats.RunID
				bookmarks = append(bookmarks, *b)
			}
		}
		for _, b := range bd.checkExtinctions(stats) {
			b.RunID = stats.RunID
			bookmarks = append(bookmarks, b)
		}
	}

	bd.addToHistory(stats)

	if stats.Foxes < bd.recentFoxMin || bd.recentFoxMin == 0 {
		bd.recentFoxMin = stats.Foxes
	}
	if stats.Rabbits > bd.recentRabbitPeak {
		bd.recentRabbitPeak = stats.Rabbits
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) last() WindowStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	kills := make([]float64, len(history))
	for i, h := range history {
		kills[i] = float64(h.Kills)
	}
	avg := stat.Mean(kills, nil)
	if avg == 0 {
		return nil
	}

	if float64(stats.Kills) > avg*2.0 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Step:        stats.WindowEnd,
			Description: fmt.Sprintf("Kills %d are %.1fx average (%.2f)", stats.Kills, float64(stats.Kills)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats WindowStats) *Bookmark {
	if bd.recentFoxMin == 0 || bd.recentFoxMin > 3 {
		return nil
	}

	threshold := bd.recentFoxMin * 3
	if stats.Foxes >= threshold && stats.Foxes >= 6 {
		oldMin := bd.recentFoxMin
		bd.recentFoxMin = stats.Foxes

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Step:        stats.WindowEnd,
			Description: fmt.Sprintf("Fox population recovered from %d to %d", oldMin, stats.Foxes),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats WindowStats) *Bookmark {
	if bd.recentRabbitPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Rabbits)/float64(bd.recentRabbitPeak)
	if dropPercent > 0.30 && stats.Rabbits < bd.recentRabbitPeak-10 {
		oldPeak := bd.recentRabbitPeak
		bd.recentRabbitPeak = stats.Rabbits

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Step:        stats.WindowEnd,
			Description: fmt.Sprintf("Rabbits crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Rabbits),
		}
	}
	return nil
}

// cv2 returns the squared coefficient of variation of xs.
func cv2(xs []float64) float64 {
	mean, variance := stat.PopMeanVariance(xs, nil)
	if mean == 0 {
		return 0
	}
	return variance / (mean * mean)
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Rabbits < 10 || stats.Foxes < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	rabbits := make([]float64, len(recent))
	foxes := make([]float64, len(recent))
	for i, h := range recent {
		rabbits[i] = float64(h.Rabbits)
		foxes[i] = float64(h.Foxes)
	}

	if cv2(rabbits) < 0.04 && cv2(foxes) < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Step:        stats.WindowEnd,
			Description: fmt.Sprintf("Stable ecosystem with %d rabbits, %d foxes over 5+ windows", stats.Rabbits, stats.Foxes),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinctions(stats WindowStats) []Bookmark {
	prev := bd.last()
	var out []Bookmark
	for _, sp := range []struct {
		name      string
		was, isNow int
	}{
		{"rabbit", prev.Rabbits, stats.Rabbits},
		{"fox", prev.Foxes, stats.Foxes},
		{"hunter", prev.Hunters, stats.Hunters},
	} {
		if sp.was > 0 && sp.isNow == 0 {
			out = append(out, Bookmark{
				Type:        BookmarkExtinction,
				Step:        stats.WindowEnd,
				Description: fmt.Sprintf("%s died out (was %d)", sp.name, sp.was),
			})
		}
	}
	return out
}
