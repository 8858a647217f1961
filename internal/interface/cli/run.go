package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/daichi-lab/cgtutor/internal/app/session"
	"github.com/daichi-lab/cgtutor/internal/infra/repository/eventlog"
	"github.com/daichi-lab/cgtutor/internal/infra/scene/replay"
	validator "github.com/daichi-lab/cgtutor/internal/validator/stage"
)

// virtualClock is the time source for replayed sessions. Only tick
// steps move it, so a script produces identical timestamps, stall
// times, and log contents on every run.
type virtualClock struct {
	now time.Time
}

func newVirtualClock(start time.Time) *virtualClock {
	return &virtualClock{now: start}
}

func (c *virtualClock) Now() time.Time { return c.now }

func (c *virtualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newRunCmd() *cobra.Command {
	var (
		scriptPath  string
		participant string
		logDir      string
		startAt     string
		noLog       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a scripted tutorial session against the simulated scene",
		Long: `Run drives a full stage lifecycle from a yaml script: setup, scene
patches standing in for learner actions, validation, and advancement.
Events are appended to a participant log unless logging is disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			afs := afero.NewOsFs()

			script, err := replay.LoadScript(afs, scriptPath)
			if err != nil {
				return err
			}
			if participant == "" {
				participant = script.Participant
			}
			if participant == "" {
				participant = globalConfig.ParticipantID()
			}
			if logDir == "" {
				logDir = globalConfig.LogDir()
			}

			start := time.Now()
			if startAt != "" {
				start, err = time.Parse(time.RFC3339, startAt)
				if err != nil {
					return fmt.Errorf("run: parse --start-at: %w", err)
				}
			}
			clock := newVirtualClock(start)

			var writer *eventlog.Writer
			if globalConfig.LoggingEnabled() && !noLog && participant != "" {
				writer = eventlog.NewWriterWithClock(afs, logDir, participant, clock.Now)
			}

			sc := replay.New(afs)
			sess := session.NewWithClock(sc, validator.NewEngine(), writer, clock.Now)
			mon := session.NewMonitor(sess, globalConfig.TickInterval(), globalConfig.Debounce())

			out := cmd.OutOrStdout()
			if err := replaySteps(out, script, sess, mon, sc, clock, logDir); err != nil {
				return err
			}

			fmt.Fprintf(out, "final: %s phase=%s finished=%t runs=%d\n",
				sess.Key(), sess.Phase(), sess.Finished(), sess.HistoryLen())
			if writer != nil && writer.Path() != "" {
				fmt.Fprintf(out, "log: %s\n", writer.Path())
			}
			if err := sess.LastErr(); err != nil {
				fmt.Fprintf(out, "last error: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "path to the yaml replay script (required)")
	cmd.Flags().StringVar(&participant, "participant", "", "participant id (overrides script and environment)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "participant log directory (defaults to CGTUTOR_LOG_DIR)")
	cmd.Flags().StringVar(&startAt, "start-at", "", "virtual clock start, RFC3339 (defaults to wall clock)")
	cmd.Flags().BoolVar(&noLog, "no-log", false, "disable participant logging for this run")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

// replaySteps executes script steps in order. Tick steps advance the
// virtual clock in tick-interval increments so the monitor observes
// the same cadence a live timer would produce.
func replaySteps(out io.Writer, script *replay.Script, sess *session.Session,
	mon *session.Monitor, sc *replay.Scene, clock *virtualClock, logDir string) error {

	interval := globalConfig.TickInterval()

	for i, step := range script.Steps {
		switch step.Op {
		case replay.OpSetup:
			if err := sess.Setup(); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			fmt.Fprintf(out, "[%d] setup %s\n", i+1, sess.Key())

		case replay.OpPatch:
			sc.ApplyPatch(step.Patch)

		case replay.OpValidate:
			sc.ApplyPatch(step.Patch)
			res := sess.Validate()
			if res.OK {
				fmt.Fprintf(out, "[%d] validate %s: OK %s\n", i+1, sess.Key(), res.Message)
			} else {
				fmt.Fprintf(out, "[%d] validate %s: NG %s (%s, failures=%d)\n",
					i+1, sess.Key(), res.Message, res.Reason, sess.FailureCount())
				for _, hint := range sess.LastHints() {
					fmt.Fprintf(out, "      hint: %s\n", hint)
				}
			}

		case replay.OpAdvance:
			sess.Advance()
			fmt.Fprintf(out, "[%d] advance -> %s\n", i+1, sess.Key())

		case replay.OpReset:
			sess.Reset()
			fmt.Fprintf(out, "[%d] reset -> %s\n", i+1, sess.Key())

		case replay.OpGoto:
			if err := sess.GotoChapter(step.Chapter); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			fmt.Fprintf(out, "[%d] goto -> %s\n", i+1, sess.Key())

		case replay.OpTick:
			remaining := time.Duration(step.Ms) * time.Millisecond
			for remaining > 0 {
				d := interval
				if d > remaining {
					d = remaining
				}
				clock.Advance(d)
				remaining -= d
				mon.Tick(clock.Now())
			}

		case replay.OpSaveRender:
			path, err := sc.SaveRender(filepath.Join(logDir, "renders"), "render.png")
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			fmt.Fprintf(out, "[%d] render saved: %s\n", i+1, path)

		case replay.OpStop:
			sess.StopMonitoring()
			return nil
		}
	}
	return nil
}
