package upload

import (
	"fmt"
	"time"
)

// Phase is the widget's position in the upload lifecycle.
type Phase uint8

const (
	// PhaseIdle shows the drop zone with no file selected.
	PhaseIdle Phase = iota
	// PhaseSelected has an accepted file being decoded or "processed".
	PhaseSelected
	// PhaseCompleted has delivered the encoded file to the sink.
	PhaseCompleted
	// PhaseFailed could not read the accepted file; a new offer may retry.
	PhaseFailed
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// pendingKind tags the single deferred operation a widget owns.
type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingDecode
	pendingInterval
	pendingDelay
)

func (k pendingKind) String() string {
	switch k {
	case pendingDecode:
		return "decode"
	case pendingInterval:
		return "interval"
	case pendingDelay:
		return "delay"
	default:
		return "none"
	}
}

// State is a snapshot of a widget.
type State struct {
	// WidgetID identifies the widget instance.
	WidgetID string `json:"widgetId"`

	// AttemptID identifies the current accepted file; empty in Idle.
	AttemptID string `json:"attemptId,omitempty"`

	// Version increases with every transition.
	Version uint64 `json:"version"`

	Phase    Phase     `json:"phase"`
	File     *FileInfo `json:"file,omitempty"`
	Progress int       `json:"progress"`
	Dragging bool      `json:"dragging"`

	// Authorized is the authorizer's answer when the snapshot was taken.
	Authorized bool `json:"authorized"`

	// Err is the validation or decode error shown to the user.
	Err *Error `json:"-"`

	// ErrorText mirrors Err.Message for serialization.
	ErrorText string `json:"error,omitempty"`

	// Pending names the owned deferred operation: none, decode,
	// interval or delay.
	Pending string `json:"pending"`

	Closed    bool      `json:"closed,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ViewMode selects which half of the widget is rendered.
type ViewMode uint8

const (
	ViewDropZone ViewMode = iota
	ViewStatus
)

// String returns the mode name.
func (m ViewMode) String() string {
	if m == ViewStatus {
		return "status"
	}
	return "dropzone"
}

// MarshalText encodes the mode by name.
func (m ViewMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Icon names the glyph shown in the widget.
type Icon string

const (
	IconUpload Icon = "upload"
	IconImage  Icon = "image"
	IconCheck  Icon = "check"
)

// User-visible copy.
const (
	PromptReady    = "Click to Upload or Just Drag and drop"
	PromptSignIn   = "Sign in or Sign Up to upload"
	StatusAnalyze  = "Analyzing Floor Plan"
	StatusRedirect = "Redirecting..."
)

// View is the presentation model of a widget: everything a renderer needs
// and nothing more.
type View struct {
	Mode ViewMode `json:"mode"`
	Icon Icon     `json:"icon"`

	// Drop zone
	Prompt        string `json:"prompt,omitempty"`
	Help          string `json:"help,omitempty"`
	Error         string `json:"error,omitempty"`
	Dragging      bool   `json:"dragging,omitempty"`
	InputDisabled bool   `json:"inputDisabled,omitempty"`
	Accept        string `json:"accept,omitempty"`

	// Status
	FileName   string `json:"fileName,omitempty"`
	Progress   int    `json:"progress"`
	StatusText string `json:"statusText,omitempty"`
}

// ViewOf derives the view model for s under cfg.
func ViewOf(s State, cfg Config) View {
	cfg = cfg.withDefaults()

	if (s.Phase == PhaseSelected || s.Phase == PhaseCompleted) && s.File != nil {
		v := View{
			Mode:       ViewStatus,
			Icon:       IconImage,
			FileName:   s.File.Name,
			Progress:   s.Progress,
			StatusText: StatusAnalyze,
		}
		if s.Progress >= 100 {
			v.Icon = IconCheck
			v.StatusText = StatusRedirect
		}
		return v
	}

	v := View{
		Mode:          ViewDropZone,
		Icon:          IconUpload,
		Prompt:        PromptReady,
		Help:          fmt.Sprintf("Maximum file size %dMB", cfg.MaxSizeMB),
		Dragging:      s.Dragging,
		InputDisabled: !s.Authorized,
		Accept:        cfg.Accept,
	}
	if !s.Authorized {
		v.Prompt = PromptSignIn
	}
	if s.Err != nil {
		v.Error = s.Err.Message
	}
	return v
}
