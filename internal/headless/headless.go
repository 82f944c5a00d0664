// Package headless drives a single upload control without a terminal UI,
// rendering its progress element as a progress bar.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"cf-upload/internal/config"
	"cf-upload/internal/control"
	"cf-upload/internal/eventloop"
	"cf-upload/internal/flow"
	"cf-upload/internal/form"
	"cf-upload/internal/reader"
	"cf-upload/pkg/utils"
)

// ErrRejected is returned when the control refuses the selected file.
var ErrRejected = errors.New("file rejected")

// Options configures an upload run.
type Options struct {
	Path string
	// MaxSize overrides the limit. Zero defers to Attributes.
	MaxSize int64
	// Attributes are the file field's tag attributes (cf-max-size, max-size).
	Attributes  map[string]string
	SettleDelay time.Duration
	Dictionary  map[string]string
	Logger      zerolog.Logger
	// Out receives the progress bar and the final status line.
	Out io.Writer
}

// Upload selects Path in a fresh upload control and waits until the control
// submits it or rejects it.
func Upload(ctx context.Context, opts Options) (form.Answer, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	f, err := reader.Stat(opts.Path)
	if err != nil {
		return form.Answer{}, err
	}

	cfg := config.Default(opts.MaxSize)
	if opts.MaxSize <= 0 && len(opts.Attributes) > 0 {
		attrs := make(map[string]string, len(opts.Attributes))
		for k, v := range opts.Attributes {
			attrs[k] = v
		}
		cfg.Fields[0].Attributes = attrs
	}
	cfg.Dictionary = opts.Dictionary
	if opts.SettleDelay > 0 {
		cfg.SettleDelay = config.Duration(opts.SettleDelay)
	}

	loop := eventloop.New(64)
	defer loop.Close()
	bus := flow.NewBus()
	picker := control.NewPickerInput(loop)

	var (
		answer   form.Answer
		finished bool
		rejected string
	)
	fm, err := form.New(form.Options{
		Config:    cfg,
		Bus:       bus,
		Loop:      loop,
		Logger:    opts.Logger,
		Picker:    picker,
		NewReader: reader.NewFactory(loop),
		OnDone: func(a []form.Answer) {
			finished = true
			if len(a) > 0 {
				answer = a[0]
			}
		},
	})
	if err != nil {
		return form.Answer{}, err
	}
	defer fm.Close()
	unsub := bus.Subscribe(flow.ChannelFlow, flow.UserInputInvalid, func(ev flow.Event) {
		if dto, ok := ev.Detail.(flow.DTO); ok {
			rejected = dto.ErrorText
		}
	})
	defer unsub()
	if err := fm.Start(); err != nil {
		return form.Answer{}, err
	}

	bar := progressbar.NewOptions64(100,
		progressbar.OptionSetDescription(f.Name()),
		progressbar.OptionSetWriter(opts.Out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
	)

	stop := context.AfterFunc(ctx, loop.Close)
	defer stop()

	picker.Select(f)
	for !finished && rejected == "" {
		fn, ok := loop.Next()
		if !ok {
			return form.Answer{}, ctx.Err()
		}
		fn()
		if u, ok := fm.Current().(*control.UploadFile); ok {
			_ = bar.Set64(int64(barWidth(u)))
		}
	}
	if rejected != "" {
		_ = bar.Clear()
		fmt.Fprintf(opts.Out, "%s\n", rejected)
		return form.Answer{}, fmt.Errorf("%w: %s", ErrRejected, rejected)
	}
	_ = bar.Finish()
	fmt.Fprintf(opts.Out, "\nREADY %s (%s)\n", answer.Value, utils.HumanizeFileSize(answer.Size))
	return answer, nil
}

// barWidth reads the percentage the control wrote to its progress bar.
func barWidth(u *control.UploadFile) float64 {
	el := u.Element().First(control.TagUploadProgressBar)
	if el == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(el.Style("width"), "%"), 64)
	if err != nil {
		return 0
	}
	return v
}
