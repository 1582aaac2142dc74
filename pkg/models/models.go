package models

// DiffItem is one unit of proposed change: a merged pull/merge request with
// its description, unified-diff body, and canonical URL. The ID is supplied
// by the caller and must be unique within a batch. Items are never mutated
// by the core.
type DiffItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Diff        string `json:"diff"`
	URL         string `json:"url"`
}

// FilterPolicy configures the relevance filter. Pattern and label matching
// is case-insensitive substring matching against the item description.
// A policy value is never mutated after construction.
type FilterPolicy struct {
	MinDiffSize     int      `json:"min_diff_size" koanf:"min_diff_size"`
	MinCodeChanges  int      `json:"min_code_changes" koanf:"min_code_changes"`
	ExcludePatterns []string `json:"exclude_patterns" koanf:"exclude_patterns"`
	ExcludeLabels   []string `json:"exclude_labels" koanf:"exclude_labels"`
	IncludeLabels   []string `json:"include_labels" koanf:"include_labels"`

	// MaxItems caps FilterAll's result when > 0.
	MaxItems int `json:"max_items" koanf:"max_items"`

	// StrictCounting additionally excludes version-number and
	// dependency-manifest lines from the meaningful-change count.
	StrictCounting bool `json:"strict_counting" koanf:"strict_counting"`
}

// Channel identifies one of the two independent note kinds tracked per item.
type Channel string

const (
	ChannelDeveloper Channel = "developer"
	ChannelMarketing Channel = "marketing"
)

// Valid reports whether c is one of the two defined channels.
func (c Channel) Valid() bool {
	return c == ChannelDeveloper || c == ChannelMarketing
}

// Contributor is one author on the change, as reported by the enrichment
// lookup. Passed through to consumers unmodified.
type Contributor struct {
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Contributions int    `json:"contributions"`
}

// ToolsInfo is the opaque enrichment payload attached to an item: up to
// three related issues and up to three contributors sorted by contribution
// count descending.
type ToolsInfo struct {
	RelatedIssues []string      `json:"relatedIssues"`
	Contributors  []Contributor `json:"contributors"`
}

// NoteState accumulates the two generated notes for one diff item. The text
// fields only ever grow; a channel is considered final once its completion
// frame has been seen.
type NoteState struct {
	Developer string     `json:"developer"`
	Marketing string     `json:"marketing"`
	Tools     *ToolsInfo `json:"tools,omitempty"`
}

// Frame type markers carried on the wire.
const (
	FrameTypeTools = "tools"
	FrameTypeError = "error"
)

// StreamFrame is the wire unit of the multiplexed note stream. Exactly one
// of the variants below is populated:
//
//   - content:    PRID + Section + Content (Content may be empty for the
//     channel-open signal)
//   - completion: PRID + Section + Done
//   - tools:      PRID + Type "tools" + Tools
//   - error:      Type "error" + Message, fatal for the whole stream
//
// Frames for one (PRID, Section) pair always arrive in emission order.
type StreamFrame struct {
	PRID    string     `json:"prId,omitempty"`
	Section Channel    `json:"section,omitempty"`
	Content string     `json:"content,omitempty"`
	Done    bool       `json:"done,omitempty"`
	Type    string     `json:"type,omitempty"`
	Tools   *ToolsInfo `json:"tools,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ContentFrame builds a fragment frame for one channel of one item.
func ContentFrame(prID string, section Channel, content string) StreamFrame {
	return StreamFrame{PRID: prID, Section: section, Content: content}
}

// DoneFrame builds the completion marker for one channel of one item.
func DoneFrame(prID string, section Channel) StreamFrame {
	return StreamFrame{PRID: prID, Section: section, Done: true}
}

// ToolsFrame builds the one-shot enrichment frame for an item.
func ToolsFrame(prID string, tools ToolsInfo) StreamFrame {
	return StreamFrame{PRID: prID, Type: FrameTypeTools, Tools: &tools}
}

// ErrorFrame builds the terminal error frame for the whole stream.
func ErrorFrame(message string) StreamFrame {
	return StreamFrame{Type: FrameTypeError, Message: message}
}

// IsError reports whether the frame is the terminal error variant.
func (f StreamFrame) IsError() bool {
	return f.Type == FrameTypeError
}

// IsTools reports whether the frame carries an enrichment payload.
func (f StreamFrame) IsTools() bool {
	return f.Type == FrameTypeTools
}

// IsDone reports whether the frame is a channel completion marker.
func (f StreamFrame) IsDone() bool {
	return f.Done && f.Section.Valid()
}

// IsContent reports whether the frame is a text fragment (including the
// empty channel-open fragment).
func (f StreamFrame) IsContent() bool {
	return f.Type == "" && !f.Done && f.Section.Valid()
}
