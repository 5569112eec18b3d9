// Package uploadtest provides testing helpers for upload widgets.
//
// The uploadtest package removes wall-clock time from widget tests: a
// manual Scheduler fires the progress interval and the completion delay
// only when the test advances it.
//
// # Quick Start
//
//	func TestUpload_Completes(t *testing.T) {
//	    sched := uploadtest.NewScheduler()
//	    sink := &uploadtest.Sink{}
//	    w := upload.New(upload.DefaultConfig(),
//	        upload.WithScheduler(sched),
//	        upload.WithAuthorizer(auth.Static(true)),
//	        upload.WithOnComplete(sink.Func()),
//	    )
//	    defer w.Close()
//
//	    w.Offer(uploadtest.ImageFile("photo.png", "image/png", 1024))
//	    sched.Advance(time.Second)
//	    sched.Advance(upload.DefaultCompleteDelay)
//
//	    if sink.Count() != 1 {
//	        t.Fatal("expected one completion")
//	    }
//	}
//
// # Asynchronous decode
//
// Go runs synchronously by default. To observe the Selected phase before
// the decode finishes, queue it:
//
//	sched := uploadtest.NewScheduler().DeferGo()
//	w.Offer(f)            // Selected, pending decode
//	sched.RunPending()    // decode done, interval running
//
// # Assertions
//
//	uploadtest.ExpectPhase(t, w, upload.PhaseSelected)
//	uploadtest.ExpectProgress(t, w, 45)
//	uploadtest.ExpectError(t, w, "Only JPEG and PNG files are allowed.")
package uploadtest
