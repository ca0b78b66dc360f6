// internal/console/dispatch.go
package console

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
	"github.com/tamzrod/deskd/internal/desk"
)

const helpText = `commands:
  help                 this text
  status               uptime, goroutines, last height, presence
  ping                 bus loopback self test
  height               ask the desk for its height
  move <cmd>           up down p1 p2 p3 p4 wake memory toggle
  timer <seconds>      start the sit/stand countdown
  timer stop           cancel the countdown
  interval [minutes]   show or set the sit/stand interval (1..255)
  threshold [devices]  show or set the presence device threshold
  log <on|off> <mod>   debug logging for control, desk or presence
  quit                 close this session`

// dispatch executes one console line. quit asks the serve loop to close
// the session; a non-nil error is a bus contract violation and halts
// the daemon.
func (s *Server) dispatch(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		s.printf("%s", helpText)
		return false, nil

	case "status":
		s.status()
		return false, nil

	case "quit", "exit":
		s.printf("bye")
		return true, nil

	case "ping":
		return false, s.pub.Publish(bus.Message{Topic: bus.TopicLoopback})

	case "height":
		return false, s.pub.Publish(bus.Message{Topic: bus.TopicHeightQuery})

	case "move":
		return false, s.move(args)

	case "timer":
		return false, s.timer(args)

	case "interval":
		return false, s.interval(args)

	case "threshold":
		return false, s.threshold(args)

	case "log":
		return false, s.logToggle(args)

	default:
		s.printf("unknown command %q (try 'help')", cmd)
		return false, nil
	}
}

func (s *Server) status() {
	s.mu.Lock()
	height := "unknown"
	if s.hasHeight {
		height = fmt.Sprintf("%.1f cm", float64(s.heightTenths)/10)
	}
	present := s.present
	s.mu.Unlock()

	s.printf("uptime:     %s", time.Since(s.start).Round(time.Second))
	s.printf("goroutines: %d", runtime.NumGoroutine())
	s.printf("height:     %s", height)
	s.printf("presence:   %v", present)
}

func (s *Server) move(args []string) error {
	if len(args) != 1 {
		s.printf("usage: move <up|down|p1|p2|p3|p4|wake|memory|toggle>")
		return nil
	}
	cmd, ok := desk.ParseCommand(args[0])
	if !ok {
		s.printf("unknown move %q", args[0])
		return nil
	}
	if cmd == desk.CommandToggle {
		return s.pub.Publish(bus.Message{Topic: bus.TopicDeskToggle})
	}
	return s.pub.Publish(bus.Message{
		Topic: bus.TopicDeskMove,
		Data:  []byte{byte(cmd)},
	})
}

func (s *Server) timer(args []string) error {
	if len(args) != 1 {
		s.printf("usage: timer <seconds> | timer stop")
		return nil
	}
	if args[0] == "stop" {
		s.printf("timer stopped")
		return s.pub.Publish(bus.Message{Topic: bus.TopicCountdownStop})
	}
	secs, err := strconv.Atoi(args[0])
	if err != nil || secs <= 0 {
		s.printf("timer wants a positive number of seconds")
		return nil
	}
	s.printf("timer started: %d s", secs)
	return s.pub.Publish(bus.Message{
		Topic: bus.TopicCountdownStart,
		Data:  bus.U32Payload(uint32(secs) * 1000),
	})
}

func (s *Server) interval(args []string) error {
	switch len(args) {
	case 0:
		return s.pub.Publish(bus.Message{Topic: bus.TopicIntervalGet})
	case 1:
		min, err := strconv.Atoi(args[0])
		if err != nil || min < 1 || min > 255 {
			s.printf("interval wants minutes in 1..255")
			return nil
		}
		return s.pub.Publish(bus.Message{
			Topic: bus.TopicIntervalSet,
			Data:  bus.U32Payload(uint32(min)),
		})
	default:
		s.printf("usage: interval [minutes]")
		return nil
	}
}

func (s *Server) threshold(args []string) error {
	switch len(args) {
	case 0:
		return s.pub.Publish(bus.Message{Topic: bus.TopicThresholdGet})
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > 100 {
			s.printf("threshold wants a device count in 0..100")
			return nil
		}
		return s.pub.Publish(bus.Message{
			Topic: bus.TopicThresholdSet,
			Data:  bus.U32Payload(uint32(n)),
		})
	default:
		s.printf("usage: threshold [devices]")
		return nil
	}
}

func (s *Server) logToggle(args []string) error {
	if len(args) != 2 {
		s.printf("usage: log <on|off> <control|desk|presence>")
		return nil
	}

	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		s.printf("usage: log <on|off> <control|desk|presence>")
		return nil
	}

	var topic bus.Topic
	switch args[1] {
	case "control":
		topic = bus.TopicLogControl
	case "desk":
		topic = bus.TopicLogDesk
	case "presence":
		topic = bus.TopicLogPresence
	default:
		s.printf("unknown module %q (control, desk or presence)", args[1])
		return nil
	}

	s.printf("log %s: debug %s", args[1], args[0])
	return s.pub.Publish(bus.Message{Topic: topic, Data: bus.BoolPayload(on)})
}
