package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"pulsetrain/host/client"
	"pulsetrain/host/config"
	"pulsetrain/host/serial"
	"pulsetrain/protocol"
	"pulsetrain/pulse"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", serial.DefaultBaud, "Baud rate (ignored for USB CDC)")
	preset  = flag.String("preset", "", "YAML preset to send on connect")
	verbose = flag.Bool("verbose", false, "Print every protocol line")
)

func main() {
	flag.Parse()

	fmt.Println("pulse-host - pulse train generator console (protocol " + protocol.Version + ")")
	fmt.Println()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to %s...\n", *device)
	conn, err := client.Connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	if *verbose {
		conn.Trace = os.Stderr
	}
	fmt.Println("Connected.")

	if *preset != "" {
		if err := sendPreset(conn, *preset); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		if quit := runCommand(conn, parts); quit {
			fmt.Println("Goodbye!")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

// runCommand executes one console command and reports whether to exit
func runCommand(conn *client.Client, parts []string) bool {
	var err error

	switch strings.ToLower(parts[0]) {
	case "quit", "exit", "q":
		return true

	case "help", "?":
		printHelp()
		var lines []string
		if lines, err = conn.Help(); err == nil {
			fmt.Println("Device commands:")
			for _, line := range lines {
				fmt.Println("  " + line)
			}
		}

	case "ping":
		if err = conn.Ping(); err == nil {
			fmt.Println("pong")
		}

	case "cfg":
		err = sendConfig(conn, parts[1:])

	case "preset":
		if len(parts) != 2 {
			err = errors.New("usage: preset <file>")
			break
		}
		err = sendPreset(conn, parts[1])

	case "go":
		err = conn.Go()

	case "stop":
		err = conn.Stop()

	case "count":
		var n uint32
		if n, err = conn.Count(); err == nil {
			fmt.Printf("Completed trains: %d\n", n)
		}

	case "state":
		var st protocol.State
		if st, err = conn.State(); err == nil {
			fmt.Printf("Phase: %s  running: %v  completed trains: %d\n", st.Phase, st.Running, st.Count)
		}

	default:
		fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", parts[0])
	}

	if err != nil {
		var rejected *client.RejectedError
		if errors.As(err, &rejected) {
			fmt.Fprintf(os.Stderr, "Rejected: %s\n", rejected.Reason)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return false
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help                                   - Show this help message")
	fmt.Println("  ping                                   - Check the device answers")
	fmt.Println("  cfg <pulse> <ipi> <n> <iti> <duty> [hz] [trains]")
	fmt.Println("                                         - Configure timing (microseconds)")
	fmt.Println("  preset <file>                          - Send a YAML preset")
	fmt.Println("  go                                     - Start a run")
	fmt.Println("  stop                                   - Stop the run")
	fmt.Println("  count                                  - Trains completed since go")
	fmt.Println("  state                                  - Show phase and run state")
	fmt.Println("  quit/exit/q                            - Exit the program")
	fmt.Println()
}

// sendConfig passes the arguments through so omitted optional fields keep
// the device's current values, then prints what the device resolved
func sendConfig(conn *client.Client, args []string) error {
	if len(args) < protocol.CfgRequiredArgs || len(args) > protocol.CfgMaxArgs {
		return errors.New("usage: cfg <pulse_us> <ipi_us> <n> <iti_us> <duty_pct> [carrier_hz] [ntrains]")
	}

	reply, err := conn.Exec("CFG " + strings.Join(args, " "))
	if err != nil {
		return err
	}
	resolved, err := protocol.ParseConfigReply(reply)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", reply, err)
	}
	printConfig(resolved)
	return nil
}

func sendPreset(conn *client.Client, path string) error {
	p, err := config.LoadPresetFile(path)
	if err != nil {
		return err
	}

	resolved, err := conn.Configure(p.Config())
	if err != nil {
		return fmt.Errorf("failed to send preset %s: %w", p.Name, err)
	}
	fmt.Printf("Preset %s applied\n", p.Name)
	printConfig(resolved)
	return nil
}

func printConfig(cfg pulse.Config) {
	trains := strconv.FormatUint(uint64(cfg.Trains), 10)
	if cfg.Unbounded() {
		trains = "until stopped"
	}
	fmt.Printf("  pulse %d us, gap %d us, %d per train, train gap %d us\n",
		cfg.PulseUS, cfg.IPIUS, cfg.PulsesPerTrain, cfg.ITIUS)
	fmt.Printf("  carrier %d Hz (%d us) at %d%%, trains: %s\n",
		cfg.CarrierHz, cfg.CarrierPeriodUS, cfg.DutyPercent, trains)
}
