package protocol

import (
	"strconv"
	"strings"

	"pulsetrain/core"
	"pulsetrain/pulse"
)

// Reply prefixes
const (
	ReplyPing  = "R"
	ReplyOK    = "OK"
	ReplyErr   = "ERR"
	ReplyCount = "COUNT="
	ReplyState = "STATE"
)

// State is the decoded STATE reply
type State struct {
	Phase   string
	Running bool
	Count   uint32
}

// AppendConfigReply appends the OK line echoing a resolved configuration
func AppendConfigReply(dst []byte, cfg pulse.Config) []byte {
	dst = append(dst, "OK pulse="...)
	dst = core.AppendUint(dst, cfg.PulseUS)
	dst = append(dst, " ipi="...)
	dst = core.AppendUint(dst, cfg.IPIUS)
	dst = append(dst, " n="...)
	dst = core.AppendUint(dst, cfg.PulsesPerTrain)
	dst = append(dst, " iti="...)
	dst = core.AppendUint(dst, cfg.ITIUS)
	dst = append(dst, " duty="...)
	dst = core.AppendUint(dst, cfg.DutyPercent)
	dst = append(dst, " pwmHz="...)
	dst = core.AppendUint(dst, cfg.CarrierHz)
	dst = append(dst, " ntrains="...)
	dst = core.AppendUint(dst, cfg.Trains)
	return dst
}

// FormatConfigReply returns the OK line for cfg without a terminator
func FormatConfigReply(cfg pulse.Config) string {
	var buf [96]byte
	return string(AppendConfigReply(buf[:0], cfg))
}

// AppendCountReply appends "COUNT=<n>"
func AppendCountReply(dst []byte, count uint32) []byte {
	dst = append(dst, ReplyCount...)
	return core.AppendUint(dst, count)
}

// AppendStateReply appends "STATE phase=<name> running=<0|1> count=<n>"
func AppendStateReply(dst []byte, phase pulse.Phase, running bool, count uint32) []byte {
	dst = append(dst, "STATE phase="...)
	dst = append(dst, phase.String()...)
	dst = append(dst, " running="...)
	if running {
		dst = append(dst, '1')
	} else {
		dst = append(dst, '0')
	}
	dst = append(dst, " count="...)
	return core.AppendUint(dst, count)
}

// ParseConfigReply decodes an OK line back into the resolved configuration.
// CarrierPeriodUS is derived from the echoed frequency.
func ParseConfigReply(line string) (pulse.Config, error) {
	var cfg pulse.Config
	fields := strings.Fields(line)
	if len(fields) != 8 || fields[0] != ReplyOK {
		return cfg, ErrMalformed
	}

	targets := []struct {
		key string
		dst *uint32
	}{
		{"pulse", &cfg.PulseUS},
		{"ipi", &cfg.IPIUS},
		{"n", &cfg.PulsesPerTrain},
		{"iti", &cfg.ITIUS},
		{"duty", &cfg.DutyPercent},
		{"pwmHz", &cfg.CarrierHz},
		{"ntrains", &cfg.Trains},
	}
	for i, target := range targets {
		value, err := keyValue(fields[i+1], target.key)
		if err != nil {
			return pulse.Config{}, err
		}
		*target.dst = value
	}

	cfg.CarrierPeriodUS = pulse.PeriodFromHz(cfg.CarrierHz)
	return cfg, nil
}

// ParseCountReply decodes "COUNT=<n>"
func ParseCountReply(line string) (uint32, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ReplyCount) {
		return 0, ErrMalformed
	}
	n, err := strconv.ParseUint(line[len(ReplyCount):], 10, 32)
	if err != nil {
		return 0, ErrMalformed
	}
	return uint32(n), nil
}

// ParseStateReply decodes a STATE line
func ParseStateReply(line string) (State, error) {
	var st State
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != ReplyState {
		return st, ErrMalformed
	}

	phase, ok := strings.CutPrefix(fields[1], "phase=")
	if !ok || phase == "" {
		return st, ErrMalformed
	}
	running, err := keyValue(fields[2], "running")
	if err != nil || running > 1 {
		return st, ErrMalformed
	}
	count, err := keyValue(fields[3], "count")
	if err != nil {
		return st, err
	}

	st.Phase = phase
	st.Running = running == 1
	st.Count = count
	return st, nil
}

func keyValue(field, key string) (uint32, error) {
	value, ok := strings.CutPrefix(field, key+"=")
	if !ok {
		return 0, ErrMalformed
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, ErrMalformed
	}
	return uint32(n), nil
}

// ParseArg decodes one decimal command argument. Negative values clamp to
// 0 and values beyond the uint32 range clamp to its maximum.
func ParseArg(s string) (uint32, error) {
	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return 0, ErrBadNumber
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, ErrBadNumber
		}
		if n <= 0xFFFFFFFF {
			n = n*10 + uint64(c-'0')
		}
	}

	if negative {
		return 0, nil
	}
	if n > 0xFFFFFFFF {
		return 0xFFFFFFFF, nil
	}
	return uint32(n), nil
}
