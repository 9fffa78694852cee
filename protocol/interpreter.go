package protocol

import (
	"errors"
	"io"
	"strings"

	"pulsetrain/core"
	"pulsetrain/pulse"
)

// Interpreter decodes command lines into Device operations and writes the
// replies to its writer. It runs in normal context only.
type Interpreter struct {
	dev      *pulse.Device
	registry *core.CommandRegistry
	lines    *LineBuffer
	out      *ScratchOutput
	w        io.Writer
}

// NewInterpreter creates an interpreter for dev replying to w
func NewInterpreter(dev *pulse.Device, w io.Writer) *Interpreter {
	it := &Interpreter{
		dev:      dev,
		registry: core.NewCommandRegistry(),
		lines:    NewLineBuffer(),
		out:      NewScratchOutput(),
		w:        w,
	}

	it.registry.Register("R", "", it.cmdPing)
	it.registry.Register("CFG", "<pulse_us> <ipi_us> <n> <iti_us> <duty_pct> [carrier_hz] [ntrains]", it.cmdConfig)
	it.registry.Register("GO", "", it.cmdGo)
	it.registry.Register("STOP", "", it.cmdStop)
	it.registry.Register("COUNT", "", it.cmdCount)
	it.registry.Register("STATE", "", it.cmdState)
	it.registry.Register("HELP", "", it.cmdHelp)

	return it
}

// Registry returns the command registry
func (it *Interpreter) Registry() *core.CommandRegistry {
	return it.registry
}

// Feed queues received bytes and executes every line they complete
func (it *Interpreter) Feed(data []byte) error {
	for len(data) > 0 {
		n := it.lines.Write(data)
		data = data[n:]
		if err := it.Poll(); err != nil {
			return err
		}
	}
	return nil
}

// Poll executes every complete line already queued
func (it *Interpreter) Poll() error {
	for {
		line, ok, err := it.lines.Next()
		if !ok {
			return nil
		}
		if err != nil {
			it.out.Reset()
			it.reject(err)
			if werr := it.flush(); werr != nil {
				return werr
			}
			continue
		}
		if err := it.Exec(string(line)); err != nil {
			return err
		}
	}
}

// Exec runs one command line and writes its reply. The returned error is
// a write failure; command errors are reported to the host as ERR lines.
func (it *Interpreter) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	it.out.Reset()
	if err := it.registry.Dispatch(fields); err != nil {
		it.out.Reset()
		it.reject(err)
	}
	return it.flush()
}

func (it *Interpreter) reject(err error) {
	it.out.OutputString(ReplyErr + " " + err.Error() + "\n")
	if !errors.Is(err, core.ErrUnknownCommand) {
		core.DebugPrintln("[PROTO] rejected: " + err.Error())
	}
}

func (it *Interpreter) flush() error {
	if it.out.CurPosition() == 0 {
		return nil
	}
	_, err := it.w.Write(it.out.Result())
	it.out.Reset()
	return err
}

func (it *Interpreter) reply(line []byte) {
	it.out.Output(line)
	it.out.Output([]byte{'\n'})
}

func (it *Interpreter) cmdPing(args []string) error {
	if len(args) != 0 {
		return ErrTooManyArgs
	}
	it.reply([]byte(ReplyPing))
	return nil
}

// cmdConfig parses every argument before touching the device so a bad line
// leaves the configuration unchanged
func (it *Interpreter) cmdConfig(args []string) error {
	if len(args) < CfgRequiredArgs {
		return ErrMissingArgument
	}
	if len(args) > CfgMaxArgs {
		return ErrTooManyArgs
	}

	var values [CfgMaxArgs]uint32
	for i, arg := range args {
		v, err := ParseArg(arg)
		if err != nil {
			return err
		}
		values[i] = v
	}

	cfg := it.dev.Config()
	cfg.PulseUS = values[0]
	cfg.IPIUS = values[1]
	cfg.PulsesPerTrain = values[2]
	cfg.ITIUS = values[3]
	cfg.DutyPercent = values[4]
	if len(args) > 5 {
		cfg.CarrierHz = values[5]
	}
	if len(args) > 6 {
		cfg.Trains = values[6]
	}

	resolved := it.dev.Configure(cfg)

	var buf [96]byte
	it.reply(AppendConfigReply(buf[:0], resolved))
	return nil
}

func (it *Interpreter) cmdGo(args []string) error {
	if len(args) != 0 {
		return ErrTooManyArgs
	}
	it.dev.Start()
	return nil
}

func (it *Interpreter) cmdStop(args []string) error {
	if len(args) != 0 {
		return ErrTooManyArgs
	}
	it.dev.Stop()
	return nil
}

func (it *Interpreter) cmdCount(args []string) error {
	if len(args) != 0 {
		return ErrTooManyArgs
	}
	var buf [24]byte
	it.reply(AppendCountReply(buf[:0], it.dev.CompletedTrains()))
	return nil
}

func (it *Interpreter) cmdState(args []string) error {
	if len(args) != 0 {
		return ErrTooManyArgs
	}
	var buf [64]byte
	st := it.dev.Status()
	it.reply(AppendStateReply(buf[:0], st.Phase, st.Running, st.CompletedTrains))
	return nil
}

func (it *Interpreter) cmdHelp(args []string) error {
	if len(args) != 0 {
		return ErrTooManyArgs
	}
	it.out.OutputString(it.registry.GetDictionary())
	it.reply([]byte(ReplyOK))
	return nil
}
