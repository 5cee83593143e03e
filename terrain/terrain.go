// Package terrain builds the obstacle layout for a field, either from a
// text map or from randomly grown stone clusters.
package terrain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/pthm-cable/fieldsim/config"
	"github.com/pthm-cable/fieldsim/field"
)

// ErrEmptyMap is returned when a map marks no cell as blocked.
var ErrEmptyMap = errors.New("terrain: map has no blocked cells")

// Layout is the set of blocked cells, in discovery order.
type Layout []field.Coord

// Parse reads a row-major text grid. Spaces and '.' are open ground; any
// other character blocks its cell. Cells outside depth x width are ignored.
func Parse(r io.Reader, depth, width int) (Layout, error) {
	var layout Layout
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() && row < depth {
		for col, ch := range []rune(sc.Text()) {
			if col >= width {
				break
			}
			if ch == ' ' || ch == '.' || ch == '\t' || ch == '\r' {
				continue
			}
			layout = append(layout, field.Coord{Row: row, Col: col})
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning map: %w", err)
	}
	if len(layout) == 0 {
		return nil, ErrEmptyMap
	}
	return layout, nil
}

// LoadMap reads and parses the map file at path.
func LoadMap(path string, depth, width int) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer f.Close()

	layout, err := Parse(f, depth, width)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return layout, nil
}

// Clusters grows count stone clusters. Each cluster starts at a random
// unblocked cell and spreads into up to spread nearby free cells.
func Clusters(depth, width, count, spread int, rng *rand.Rand) Layout {
	grid := field.New(depth, width)
	blocked := make(map[uint64]bool)
	var layout Layout

	add := func(c field.Coord) {
		blocked[c.Key()] = true
		layout = append(layout, c)
	}

	for i := 0; i < count && len(layout) < depth*width; i++ {
		seed := grid.RandomCoord(rng)
		for tries := 0; blocked[seed.Key()] && tries < depth*width; tries++ {
			seed = grid.RandomCoord(rng)
		}
		if blocked[seed.Key()] {
			continue
		}
		add(seed)

		cluster := []field.Coord{seed}
		for n := 0; n < spread; n++ {
			from := cluster[rng.Intn(len(cluster))]
			grew := false
			for _, c := range grid.AdjacentCoords(from, rng) {
				if !blocked[c.Key()] {
					add(c)
					cluster = append(cluster, c)
					grew = true
					break
				}
			}
			if !grew {
				break
			}
		}
	}
	return layout
}

// Build returns the obstacle layout for a run. A configured map that cannot
// be used is logged and replaced with random clusters; Build never fails.
func Build(cfg config.ObstaclesConfig, depth, width int, rng *rand.Rand) Layout {
	if cfg.Map != "" {
		layout, err := LoadMap(cfg.Map, depth, width)
		if err == nil {
			slog.Info("obstacle_map_loaded", "path", cfg.Map, "stones", len(layout))
			return layout
		}
		slog.Warn("obstacle_map_fallback", "path", cfg.Map, "error", err)
	}
	return Clusters(depth, width, cfg.StoneCount, cfg.ClusterSpread, rng)
}
