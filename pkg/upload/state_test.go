package upload

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestViewOf(t *testing.T) {
	cfg := Config{MaxSizeMB: 50}
	file := &FileInfo{Name: "photo.png", Size: 10, ContentType: "image/png"}
	typeErr := &Error{Code: CodeUnsupportedType, Message: "Only JPEG and PNG files are allowed."}

	tests := []struct {
		name  string
		state State
		want  View
	}{
		{
			name:  "idle signed in",
			state: State{Phase: PhaseIdle, Authorized: true},
			want: View{
				Mode:   ViewDropZone,
				Icon:   IconUpload,
				Prompt: PromptReady,
				Help:   "Maximum file size 50MB",
				Accept: DefaultAccept,
			},
		},
		{
			name:  "idle signed out",
			state: State{Phase: PhaseIdle},
			want: View{
				Mode:          ViewDropZone,
				Icon:          IconUpload,
				Prompt:        PromptSignIn,
				Help:          "Maximum file size 50MB",
				InputDisabled: true,
				Accept:        DefaultAccept,
			},
		},
		{
			name:  "idle with error while dragging",
			state: State{Phase: PhaseIdle, Authorized: true, Dragging: true, Err: typeErr},
			want: View{
				Mode:     ViewDropZone,
				Icon:     IconUpload,
				Prompt:   PromptReady,
				Help:     "Maximum file size 50MB",
				Error:    typeErr.Message,
				Dragging: true,
				Accept:   DefaultAccept,
			},
		},
		{
			name:  "selected in progress",
			state: State{Phase: PhaseSelected, Authorized: true, File: file, Progress: 45},
			want: View{
				Mode:       ViewStatus,
				Icon:       IconImage,
				FileName:   "photo.png",
				Progress:   45,
				StatusText: StatusAnalyze,
			},
		},
		{
			name:  "selected at 100",
			state: State{Phase: PhaseSelected, Authorized: true, File: file, Progress: 100},
			want: View{
				Mode:       ViewStatus,
				Icon:       IconCheck,
				FileName:   "photo.png",
				Progress:   100,
				StatusText: StatusRedirect,
			},
		},
		{
			name:  "completed",
			state: State{Phase: PhaseCompleted, File: file, Progress: 100},
			want: View{
				Mode:       ViewStatus,
				Icon:       IconCheck,
				FileName:   "photo.png",
				Progress:   100,
				StatusText: StatusRedirect,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ViewOf(tt.state, cfg); got != tt.want {
				t.Errorf("ViewOf() =\n%+v\nwant\n%+v", got, tt.want)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		PhaseIdle:      "idle",
		PhaseSelected:  "selected",
		PhaseCompleted: "completed",
		PhaseFailed:    "failed",
		Phase(99):      "unknown",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

func TestStateJSON(t *testing.T) {
	s := State{
		WidgetID:  "w1",
		Phase:     PhaseFailed,
		Err:       &Error{Code: CodeDecodeFailure, Message: "boom"},
		ErrorText: "boom",
		Pending:   pendingNone.String(),
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got := string(data)
	for _, want := range []string{`"phase":"failed"`, `"error":"boom"`, `"pending":"none"`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON %s missing %s", got, want)
		}
	}
}
