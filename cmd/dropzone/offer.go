package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/dropzone/internal/errors"
	"github.com/vango-dev/dropzone/internal/inspect"
	"github.com/vango-dev/dropzone/pkg/auth"
	"github.com/vango-dev/dropzone/pkg/upload"
)

type offerOptions struct {
	drop      bool
	signedOut bool
	inspect   string
	out       string
	timeout   time.Duration
	linger    bool
}

func offerCmd(root *rootOptions) *cobra.Command {
	opts := &offerOptions{}

	cmd := &cobra.Command{
		Use:   "offer <path>",
		Short: "Upload a file through the widget",
		Long: `Offer a file to the upload widget and print the data URL it delivers.

The file goes through the same validation, decode and progress steps as
a file picked in the browser. Progress is written to stderr; the data
URL is written to stdout or to --out.

When <path> is a directory, the first file matching the accept filter
is used.

Examples:
  dropzone offer plan.png
  dropzone offer scans/ --drop
  dropzone offer plan.jpg --out plan.txt --inspect localhost:7070`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOffer(cmd.Context(), root, opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.drop, "drop", false, "Deliver the file as a drag-and-drop event instead of the picker")
	cmd.Flags().BoolVar(&opts.signedOut, "signed-out", false, "Run as a signed-out user")
	cmd.Flags().StringVar(&opts.inspect, "inspect", "", "Serve the inspector on this address while the upload runs")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the data URL to this file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Give up if the upload has not completed")
	cmd.Flags().BoolVar(&opts.linger, "linger", false, "Keep the inspector running after completion until interrupted")

	return cmd
}

func runOffer(ctx context.Context, root *rootOptions, opts *offerOptions, path string, stdout, stderr io.Writer) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := root.logger(cfg, stderr)
	widgetCfg := cfg.WidgetConfig()

	file, err := resolveFile(path, upload.ParseAccept(widgetCfg.Accept))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := upload.NewMetrics(upload.WithRegistry(registry))

	delivered := make(chan string, 1)
	w := upload.New(widgetCfg,
		upload.WithAuthorizer(auth.NewFlag(!opts.signedOut)),
		upload.WithOnComplete(func(dataURL string) { delivered <- dataURL }),
		upload.WithLogger(logger),
		upload.WithMetrics(metrics),
	)
	defer w.Close()

	if opts.inspect != "" {
		srv := inspect.New(w, inspect.WithGatherer(registry), inspect.WithLogger(logger))
		addr, err := srv.Start(opts.inspect)
		if err != nil {
			return errors.New("D304").WithPath(opts.inspect).Wrap(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		info(stderr, "Inspector at http://%s", addr)
	}

	failed := make(chan *upload.Error, 1)
	p := &progressPrinter{w: stderr}
	unsubscribe := w.Subscribe(func(s upload.State) {
		if s.Phase == upload.PhaseFailed && s.Err != nil {
			select {
			case failed <- s.Err:
			default:
			}
		}
		p.print(upload.ViewOf(s, widgetCfg))
	})
	defer unsubscribe()

	if opts.signedOut {
		warn(stderr, "Running as a signed-out user")
	}
	view := w.View()
	info(stderr, "%s (%s)", view.Prompt, view.Help)

	if opts.drop {
		w.DragOver(&upload.DragEvent{})
		err = w.Drop(&upload.DragEvent{Files: []upload.File{file}})
	} else {
		err = w.Change([]upload.File{file})
	}
	if err != nil {
		return errors.FromUpload(err).WithPath(path)
	}

	waitCtx := ctx
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var dataURL string
	select {
	case dataURL = <-delivered:
	case ue := <-failed:
		return errors.FromUpload(ue).WithPath(path)
	case <-waitCtx.Done():
		return errors.New("D305").WithPath(path).Wrap(waitCtx.Err())
	}

	if opts.out != "" {
		if err := os.WriteFile(opts.out, []byte(dataURL), 0644); err != nil {
			return errors.New("D303").WithPath(opts.out).Wrap(err)
		}
		success(stderr, "Wrote %s (%d bytes)", opts.out, len(dataURL))
	} else {
		fmt.Fprintln(stdout, dataURL)
	}

	if opts.linger && opts.inspect != "" {
		info(stderr, "Inspector still running, press Ctrl+C to exit")
		<-ctx.Done()
	}
	return nil
}

// resolveFile opens path, or the first file in the directory path that the
// accept filter matches.
func resolveFile(path string, accept upload.AcceptFilter) (upload.File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return upload.File{}, errors.New("D301").WithPath(path).Wrap(err)
	}

	if st.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return upload.File{}, errors.New("D301").WithPath(path).Wrap(err)
		}
		match := ""
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			name := entry.Name()
			if accept.Match(name, mime.TypeByExtension(filepath.Ext(name))) {
				match = filepath.Join(path, name)
				break
			}
		}
		if match == "" {
			return upload.File{}, errors.New("D302").WithPath(path)
		}
		path = match
	}

	f, err := upload.OpenFile(path)
	if err != nil {
		return upload.File{}, errors.New("D301").WithPath(path).Wrap(err)
	}
	return f, nil
}

// progressPrinter writes one line per visible change of the status view.
type progressPrinter struct {
	w    io.Writer
	mu   sync.Mutex
	last upload.View
}

func (p *progressPrinter) print(v upload.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v == p.last {
		return
	}
	p.last = v

	switch {
	case v.Mode == upload.ViewStatus:
		info(p.w, "%s  %3d%%  %s", v.FileName, v.Progress, v.StatusText)
	case v.Error != "":
		errorMsg(p.w, "%s", v.Error)
	case v.Dragging:
		info(p.w, "Dragging over the drop zone")
	}
}
