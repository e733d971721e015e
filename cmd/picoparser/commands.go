package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bft-labs/picoparser/pkg/codec/flat"
	"github.com/bft-labs/picoparser/pkg/frame"
	"github.com/bft-labs/picoparser/pkg/session"
	"github.com/bft-labs/picoparser/pkg/tensor"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetBorder(false)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func tailReason(t frame.Tail) string {
	switch {
	case t.Reason == nil:
		return "clean end"
	case errors.Is(t.Reason, frame.ErrZeroLength):
		return "zero-length sentinel"
	case errors.Is(t.Reason, frame.ErrIncompleteFrame):
		return "incomplete frame"
	case errors.Is(t.Reason, frame.ErrTruncatedHeader):
		return "truncated header"
	default:
		return t.Reason.Error()
	}
}

func warnIfModified(a *app, s *session.Session) {
	if s.Modified() {
		a.zl.Warn().Msg("capture changed while it was read; results may mix old and new contents")
	}
}

func newIndexCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "index <capture>",
		Short: "List frame boundaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			idx, err := s.Frames()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			table := newTable(out, "#", "OFFSET", "LENGTH", "PAYLOAD")
			n := 0
			for {
				sl, err := idx.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				if !quiet {
					table.Append([]string{
						strconv.Itoa(n),
						strconv.FormatInt(sl.Offset, 10),
						strconv.FormatInt(sl.Length, 10),
						strconv.FormatInt(sl.PayloadLen(), 10),
					})
				}
				n++
			}
			if !quiet {
				table.Render()
			}
			tail := idx.Tail()
			fmt.Fprintf(out, "frames: %d\ntail: %d bytes at offset %d (%s)\n", n, tail.Remaining, tail.Offset, tailReason(tail))
			warnIfModified(a, s)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the totals")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "decode <capture>",
		Short: "Decode frames and list them in file order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.Records(a.cfg.Interpolate)
			if err != nil {
				return err
			}
			defer st.Close()

			table := newTable(cmd.OutOrStdout(), "#", "OFFSET", "TIMESTAMP", "TONES", "SHAPE", "STATUS")
			for n := 0; limit <= 0 || n < limit; n++ {
				if ctx.Err() != nil {
					a.zl.Info().Msg("interrupted")
					break
				}
				res, err := st.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				row := []string{strconv.Itoa(n), strconv.FormatInt(res.Slice.Offset, 10), "-", "-", "-", "ok"}
				if res.OK() {
					rec := res.Record
					row[2] = rec.Timestamp.Format(time.RFC3339Nano)
					row[3] = strconv.Itoa(rec.Tones())
					row[4] = fmt.Sprint(rec.CSI.Shape)
				}
				if res.Err != nil {
					row[5] = res.Err.Error()
				}
				table.Append(row)
			}
			table.Render()

			report := st.Report()
			fmt.Fprintf(cmd.OutOrStdout(), "decoded: %d/%d\n", report.Decoded, report.Frames)
			if err := report.Err(); err != nil {
				a.zl.Warn().Err(err).Msg("some frames were not decoded")
			}
			warnIfModified(a, s)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many frames (0 = all)")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <capture>",
		Short: "Aggregate the whole capture and print tensor shapes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			start := time.Now()
			res, err := s.Aggregate(session.AggregateConfig{
				Fields:      a.cfg.Fields(),
				Interpolate: a.cfg.Interpolate,
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			table := newTable(out, "FIELD", "SHAPE", "VALUES")
			if res.Timestamps != nil {
				table.Append([]string{"timestamp", fmt.Sprint([]int{len(res.Timestamps)}), strconv.Itoa(len(res.Timestamps))})
			}
			if res.CSI != nil {
				table.Append(shapeRow("csi", res.CSI.Shape))
			}
			if res.Magnitude != nil {
				table.Append(shapeRow("magnitude", res.Magnitude.Shape))
			}
			if res.Phase != nil {
				table.Append(shapeRow("phase", res.Phase.Shape))
			}
			table.Render()

			fmt.Fprintf(out, "frames: %d decoded, %d failed, %d leaked in %s\n",
				res.Report.Decoded, len(res.Report.Failed), len(res.Report.Leaked), elapsed.Round(time.Millisecond))
			if len(res.Timestamps) > 0 {
				first, last := res.Timestamps[0], res.Timestamps[len(res.Timestamps)-1]
				fmt.Fprintf(out, "span: %s .. %s (%s)\n", first.Format(time.RFC3339Nano), last.Format(time.RFC3339Nano), last.Sub(first))
			}
			fmt.Fprintf(out, "tail: %d bytes (%s)\n", res.Tail.Remaining, tailReason(res.Tail))

			if len(res.Report.Failed) > 0 {
				failed := newTable(out, "OFFSET", "LENGTH", "ERROR")
				for _, f := range res.Report.Failed {
					failed.Append([]string{
						strconv.FormatInt(f.Slice.Offset, 10),
						strconv.FormatInt(f.Slice.Length, 10),
						f.Err.Error(),
					})
				}
				failed.Render()
			}
			warnIfModified(a, s)
			return nil
		},
	}
}

func shapeRow(name string, shape []int) []string {
	return []string{name, fmt.Sprint(shape), strconv.Itoa(tensor.Size(shape))}
}

type synthOptions struct {
	frames  int
	tones   int
	tx      int
	rx      int
	streams int
	seed    int64
	corrupt []int
	partial bool
	period  time.Duration
}

func newSynthCmd(a *app) *cobra.Command {
	o := synthOptions{frames: 100, tones: 56, tx: 1, rx: 2, streams: 1, seed: 1, period: time.Millisecond}
	cmd := &cobra.Command{
		Use:   "synth <output>",
		Short: "Write a synthetic flat-format capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := synthesize(o)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], buf, 0o644); err != nil {
				return fmt.Errorf("write capture: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames (%d bytes) to %s\n", o.frames, len(buf), args[0])
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.frames, "frames", o.frames, "number of frames")
	f.IntVar(&o.tones, "tones", o.tones, "measured subcarriers per frame, split evenly around the center gap")
	f.IntVar(&o.tx, "tx", o.tx, "transmit antennas")
	f.IntVar(&o.rx, "rx", o.rx, "receive antennas")
	f.IntVar(&o.streams, "streams", o.streams, "spatial streams")
	f.Int64Var(&o.seed, "seed", o.seed, "random seed")
	f.IntSliceVar(&o.corrupt, "corrupt", nil, "indices of frames whose magic is overwritten")
	f.BoolVar(&o.partial, "partial", false, "append an incomplete trailing frame")
	f.DurationVar(&o.period, "period", o.period, "timestamp step between frames")
	return cmd
}

// synthesize builds a capture whose subcarrier labels skip -1, 0 and 1 so
// that interpolation has a gap to fill.
func synthesize(o synthOptions) ([]byte, error) {
	if o.frames < 0 || o.tones < 2 {
		return nil, fmt.Errorf("synth: need frames >= 0 and tones >= 2")
	}
	labels := make([]int16, 0, o.tones)
	half := o.tones / 2
	for i := half; i > 0; i-- {
		labels = append(labels, int16(-1-i))
	}
	for i := 0; i < o.tones-half; i++ {
		labels = append(labels, int16(2+i))
	}

	rng := rand.New(rand.NewSource(o.seed))
	corrupt := make(map[int]bool, len(o.corrupt))
	for _, c := range o.corrupt {
		corrupt[c] = true
	}

	n := o.tones * o.tx * o.rx * o.streams
	t0 := time.Now().UnixNano()
	var buf []byte
	for i := 0; i < o.frames; i++ {
		values := make([]complex128, n)
		for j := range values {
			amp := 1 + rng.Float64()
			values[j] = complex(amp*math.Cos(rng.Float64()*2*math.Pi), amp*math.Sin(rng.Float64()*2*math.Pi))
		}
		start := len(buf)
		var err error
		buf, err = flat.AppendFrame(buf, flat.Frame{
			Timestamp:   t0 + int64(i)*int64(o.period),
			Tx:          o.tx,
			Rx:          o.rx,
			Streams:     o.streams,
			Subcarriers: labels,
			CSI:         values,
		})
		if err != nil {
			return nil, err
		}
		if corrupt[i] {
			buf[start+frame.HeaderSize] ^= 0xFF
		}
	}
	if o.partial {
		buf = frame.AppendFrame(buf, make([]byte, 32))
		buf = buf[:len(buf)-16]
	}
	return buf, nil
}
