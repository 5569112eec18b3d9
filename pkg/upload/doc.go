// Package upload provides the image upload widget state machine.
//
// A Widget accepts a file from a file picker or a drop event, validates
// it, reads it into a data URL off the caller's goroutine, simulates a
// processing progress bar and finally hands the data URL to a completion
// sink.
//
// # Lifecycle
//
//	Idle --offer ok--> Selected(progress 0) --decode--> ticks --100%--> delay --> Completed
//	                        |
//	                        +--decode error--> Failed (retry with a new offer)
//
// Reset returns to Idle from any phase. Close tears the widget down.
//
// # Usage
//
//	w := upload.New(upload.DefaultConfig(),
//	    upload.WithAuthorizer(auth.Static(true)),
//	    upload.WithOnComplete(func(dataURL string) {
//	        // dataURL is "data:image/png;base64,..."
//	    }),
//	)
//	defer w.Close()
//
//	// From a file picker:
//	err := w.Change([]upload.File{f})
//
//	// From a drop:
//	ev := &upload.DragEvent{Files: []upload.File{f}}
//	w.DragOver(ev)
//	err = w.Drop(ev)
//
// # Timers
//
// A widget owns at most one deferred operation at a time: the decode, the
// progress interval or the completion delay. Each is replaced when the
// next one starts and released on Reset, Close or when a new file
// supersedes an in-flight one, so a stale timer can never reach the sink.
//
// Tests drive time explicitly with uploadtest.Scheduler:
//
//	sched := uploadtest.NewScheduler()
//	w := upload.New(cfg, upload.WithScheduler(sched), ...)
//	w.Offer(f)
//	sched.Advance(cfg.ProgressInterval)
//
// # Errors
//
// Validation and decode problems surface as *Error values whose Message is
// the text shown next to the drop target. Use errors.Is with
// ErrUnsupportedType, ErrTooLarge, ErrUnauthorized or ErrDecodeFailure.
package upload
