package cache

import "time"

// Default lifetimes for cached results. Results depend only on the log
// content, so long lifetimes are safe; they bound disk growth.
const (
	TreeTTL     = 7 * 24 * time.Hour
	DiffTTL     = 7 * 24 * time.Hour
	AnalysisTTL = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey identifies the statistics of one imported search log.
	TreeKey(logHash string) string
	// LayoutKey identifies a laid-out tree's summary.
	LayoutKey(logHash string, opts LayoutKeyOpts) string
	// DiffKey identifies the comparison of two logs.
	DiffKey(leftHash, rightHash string, opts DiffKeyOpts) string
	// AnalysisKey identifies a subtree grouping of one log.
	AnalysisKey(logHash string, opts AnalysisKeyOpts) string
}

type LayoutKeyOpts struct {
	MinimalSeparation int `json:"sep"`
	LabelCharWidth    int `json:"char"`
}

type DiffKeyOpts struct {
	LabelSensitive bool `json:"labels"`
	IgnoreImplied  bool `json:"implied"`
}

type AnalysisKeyOpts struct {
	Kind   string `json:"kind"` // "shapes" or "subtrees"
	Labels string `json:"labels,omitempty"`
	// Separation is the layout separation, which shape grouping depends on.
	Separation int    `json:"sep,omitempty"`
	MinHeight  int    `json:"min_height"`
	MinCount   int    `json:"min_count"`
	Sort       string `json:"sort"`
	Subsumed   bool   `json:"subsumed"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(logHash string) string {
	return "tree:" + logHash
}

func (DefaultKeyer) LayoutKey(logHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", logHash, opts)
}

func (DefaultKeyer) DiffKey(leftHash, rightHash string, opts DiffKeyOpts) string {
	return hashKey("diff", leftHash, rightHash, opts)
}

func (DefaultKeyer) AnalysisKey(logHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", logHash, opts)
}
