package bridge

import (
	"fmt"
	"io"
)

// Config holds the bridging tunables of one bundle
type Config struct {
	// Insert-size distribution of the library
	InsertSizeLow    int32 `mapstructure:"insert-size-low"`
	InsertSizeMedian int32 `mapstructure:"insert-size-median"`
	InsertSizeHigh   int32 `mapstructure:"insert-size-high"`

	// Path-node budget
	MaxNumPathNodes int `mapstructure:"max-num-path-nodes"`
	PathNodeLow     int `mapstructure:"path-node-low"`
	PathNodeHigh    int `mapstructure:"path-node-high"`

	// DP widths
	DPSolutionSize int `mapstructure:"dp-solution-size"`
	DPStackSize    int `mapstructure:"dp-stack-size"`

	// Scoring
	MinBridgingScore  float64 `mapstructure:"min-bridging-score"`
	MinPathScore      float64 `mapstructure:"min-path-score"`
	MaxFsetScore      float64 `mapstructure:"max-fset-score"`
	UseOverlapScoring bool    `mapstructure:"use-overlap-scoring"`

	// Clustering
	MaxClusteringFlank int32 `mapstructure:"max-clustering-flank"`
}

// DefaultConfig returns the default bridging tunables
func DefaultConfig() Config {
	return Config{
		InsertSizeLow:      80,
		InsertSizeMedian:   250,
		InsertSizeHigh:     500,
		MaxNumPathNodes:    10000,
		PathNodeLow:        10,
		PathNodeHigh:       50,
		DPSolutionSize:     10,
		DPStackSize:        5,
		MinBridgingScore:   1.5,
		MinPathScore:       1,
		MaxFsetScore:       5,
		UseOverlapScoring:  false,
		MaxClusteringFlank: 30,
	}
}

// Validate checks configuration values
func (c Config) Validate() error {
	if c.InsertSizeLow < 0 || c.InsertSizeMedian < c.InsertSizeLow || c.InsertSizeHigh < c.InsertSizeMedian {
		return fmt.Errorf("insert sizes must satisfy 0 <= low <= median <= high, got (%d, %d, %d)",
			c.InsertSizeLow, c.InsertSizeMedian, c.InsertSizeHigh)
	}
	if c.MaxNumPathNodes < 1 {
		return fmt.Errorf("max-num-path-nodes must be >= 1")
	}
	if c.PathNodeLow < 2 || c.PathNodeHigh < c.PathNodeLow {
		return fmt.Errorf("path-node bounds must satisfy 2 <= low <= high, got (%d, %d)", c.PathNodeLow, c.PathNodeHigh)
	}
	if c.DPSolutionSize < 1 {
		return fmt.Errorf("dp-solution-size must be >= 1")
	}
	if c.DPStackSize < 1 {
		return fmt.Errorf("dp-stack-size must be >= 1")
	}
	if c.MaxClusteringFlank < 0 {
		return fmt.Errorf("max-clustering-flank must be >= 0")
	}
	return nil
}

// ShowConfig prints the effective bridging configuration
func (c Config) ShowConfig(w io.Writer) {
	b := c.NormalBounds()
	fmt.Fprintf(w, "Bridging:\n")
	fmt.Fprintf(w, "  Insert size: low %d, median %d, high %d\n", c.InsertSizeLow, c.InsertSizeMedian, c.InsertSizeHigh)
	fmt.Fprintf(w, "  Length bounds: [%d, %d], median %d\n", b.Low, b.High, b.Median)
	fmt.Fprintf(w, "  Path nodes: max %d, window [%d, %d]\n", c.MaxNumPathNodes, c.PathNodeLow, c.PathNodeHigh)
	fmt.Fprintf(w, "  DP: %d solutions, stack width %d\n", c.DPSolutionSize, c.DPStackSize)
	fmt.Fprintf(w, "  Scores: min bridging %.2f, min path %.2f, max fset %.2f\n", c.MinBridgingScore, c.MinPathScore, c.MaxFsetScore)
	if c.UseOverlapScoring {
		fmt.Fprintf(w, "  Overlap scoring: enabled\n")
	} else {
		fmt.Fprintf(w, "  Overlap scoring: disabled\n")
	}
	fmt.Fprintf(w, "  Max clustering flank: %d\n", c.MaxClusteringFlank)
	fmt.Fprintf(w, "\n")
}

// LengthBounds is the accepted range of implied fragment lengths
type LengthBounds struct {
	Low    int32 `json:"low"`
	Median int32 `json:"median"`
	High   int32 `json:"high"`
}

// Contains reports whether l lies in [Low, High]
func (b LengthBounds) Contains(l int32) bool {
	return l >= b.Low && l <= b.High
}

// NormalBounds derives the length bounds used for linear and circular fragments
func (c Config) NormalBounds() LengthBounds {
	b := LengthBounds{Median: c.InsertSizeMedian}
	b.High = c.InsertSizeMedian * 3
	if b.High > c.InsertSizeHigh {
		b.High = c.InsertSizeHigh
	}
	b.Low = c.InsertSizeLow / 2
	return b
}

// CircBounds is the unbounded range used by circular length checks
func (c Config) CircBounds() LengthBounds {
	return LengthBounds{Low: 0, Median: c.InsertSizeMedian, High: 999999999}
}
