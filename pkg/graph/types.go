package graph

import (
	"github.com/matzehuels/topoview/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// Defaults applied during normalization and clustered layout.
const (
	// DefaultRadius is used for nodes that declare no radius.
	DefaultRadius = 8.0

	// DefaultThickness is used for links that declare neither thickness nor width.
	DefaultThickness = 1.0

	// DefaultDistance is the rest length for links that declare no distance.
	DefaultDistance = 80.0

	// DefaultClusterPadding separates the hulls of distinct clusters.
	DefaultClusterPadding = 25.0

	// DefaultPadding separates nodes within one cluster.
	DefaultPadding = 1.5
)

// =============================================================================
// Dataset - Raw Input Records
// =============================================================================

// Dataset is the raw input consumed from a data provider: node and link
// records plus the view settings for one rendering.
type Dataset struct {
	Nodes    []RawNode `json:"nodes" yaml:"nodes" toml:"nodes"`
	Links    []RawLink `json:"links" yaml:"links" toml:"links"`
	Settings Settings  `json:"settings" yaml:"settings" toml:"settings"`
}

// RawNode is a node record as supplied by the data provider.
// A nil ID means the node is identified by its position in the sequence.
type RawNode struct {
	ID       *int    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name     string  `json:"name" yaml:"name" toml:"name"`
	Group    int     `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
	Radius   float64 `json:"radius,omitempty" yaml:"radius,omitempty" toml:"radius,omitempty"`
	Fill     string  `json:"fill,omitempty" yaml:"fill,omitempty" toml:"fill,omitempty"`
	Icon     string  `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"` // Image href overlaid on the node
	Selected bool    `json:"selected,omitempty" yaml:"selected,omitempty" toml:"selected,omitempty"`
}

// RawLink is a link record whose endpoints are positional indices into the
// node sequence of the same dataset.
type RawLink struct {
	Source    int     `json:"source" yaml:"source" toml:"source"`
	Target    int     `json:"target" yaml:"target" toml:"target"`
	Thickness float64 `json:"thickness,omitempty" yaml:"thickness,omitempty" toml:"thickness,omitempty"`
	Width     float64 `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"` // Synonym of Thickness
	Distance  float64 `json:"distance,omitempty" yaml:"distance,omitempty" toml:"distance,omitempty"`
	Label     string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Dashes    bool    `json:"dashes,omitempty" yaml:"dashes,omitempty" toml:"dashes,omitempty"`
	Stroke    string  `json:"stroke,omitempty" yaml:"stroke,omitempty" toml:"stroke,omitempty"`
}

// Settings are the view settings of one rendering instance.
// They are replaced wholesale together with the dataset.
type Settings struct {
	Clustered       bool             `json:"clustered" yaml:"clustered" toml:"clustered"`
	ShowNodeLabels  bool             `json:"showNodeLabels" yaml:"showNodeLabels" toml:"showNodeLabels"`
	ShowEdgeLabels  bool             `json:"showEdgeLabels" yaml:"showEdgeLabels" toml:"showEdgeLabels"`
	ClusterSettings *ClusterSettings `json:"clusterSettings,omitempty" yaml:"clusterSettings,omitempty" toml:"clusterSettings,omitempty"`
}

// ClusterSettings controls separation in clustered layouts.
type ClusterSettings struct {
	ClusterPadding float64 `json:"clusterPadding" yaml:"clusterPadding" toml:"clusterPadding"`
	Padding        float64 `json:"padding" yaml:"padding" toml:"padding"`
}

// Paddings returns the cluster and intra-cluster paddings, falling back to
// the defaults when no cluster settings were supplied.
func (s Settings) Paddings() (clusterPadding, padding float64) {
	if s.ClusterSettings == nil {
		return DefaultClusterPadding, DefaultPadding
	}
	return s.ClusterSettings.ClusterPadding, s.ClusterSettings.Padding
}

// Validate checks the settings for values the layout cannot honour.
func (s Settings) Validate() error {
	if s.ClusterSettings == nil {
		return nil
	}
	return errors.ValidateClusterSettings(s.ClusterSettings.ClusterPadding, s.ClusterSettings.Padding)
}

// =============================================================================
// Node and Link - Normalized Form
// =============================================================================

// Node is a normalized node. Its ID is unique within one Graph.
type Node struct {
	ID       int
	Index    int // Position in the input sequence
	Name     string
	Group    int
	Radius   float64
	Fill     string
	Icon     string
	Selected bool // Seeds the initial selection
}

// HasIcon reports whether an image primitive should be overlaid on the node.
func (n *Node) HasIcon() bool { return n.Icon != "" }

// Link is a normalized link. Endpoints are stored as node IDs and resolved
// through the owning Graph; a link never owns its nodes.
type Link struct {
	Index     int // Position in the input sequence
	SourceID  int
	TargetID  int
	Thickness float64
	Distance  float64
	Label     string
	Dashes    bool
	Stroke    string
}

// HasLabel reports whether the link carries an edge label.
func (l *Link) HasLabel() bool { return l.Label != "" }

// IsSelfLoop reports whether both endpoints are the same node.
func (l *Link) IsSelfLoop() bool { return l.SourceID == l.TargetID }
