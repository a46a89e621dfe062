package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Axis is the driver axis every command addresses.
const Axis = 1

// Terminator ends every command on the wire.
const Terminator = ';'

// CommandKind identifies a driver instruction.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandMoveTo
	CommandStop
	CommandSetMode
	CommandSeekIndex
)

func (k CommandKind) String() string {
	switch k {
	case CommandMoveTo:
		return "MoveTo"
	case CommandStop:
		return "Stop"
	case CommandSetMode:
		return "SetMode"
	case CommandSeekIndex:
		return "SeekIndex"
	default:
		return "Unknown"
	}
}

// letter is the opcode of the kind on the wire.
func (k CommandKind) letter() byte {
	switch k {
	case CommandMoveTo:
		return 'T'
	case CommandStop:
		return 'S'
	case CommandSetMode:
		return 'N'
	case CommandSeekIndex:
		return 'I'
	default:
		return 0
	}
}

// ModeIndexSearch puts the driver into index-search mode.
const ModeIndexSearch = 4

// Homing seek parameters: travel backwards up to 10000 steps looking for the index.
const (
	HomeSeekDistance = -10000
	HomeSeekParam    = 0
	HomeSeekSpeed    = 400
)

// Command is a single driver instruction with typed parameters.
// Use the constructors below and call String to obtain the wire text.
type Command struct {
	Kind CommandKind

	// Position is the absolute target for CommandMoveTo.
	Position int64

	// Mode is the driver mode for CommandSetMode.
	Mode int

	// Distance, Param and Speed configure CommandSeekIndex.
	Distance int64
	Param    int64
	Speed    int64
}

// MoveTo returns a command moving the motor to an absolute step position.
func MoveTo(position int64) Command {
	return Command{Kind: CommandMoveTo, Position: position}
}

// Stop returns a command halting any in-progress motion.
func Stop() Command {
	return Command{Kind: CommandStop}
}

// SetMode returns a command switching the driver mode.
func SetMode(mode int) Command {
	return Command{Kind: CommandSetMode, Mode: mode}
}

// SeekIndex returns a command searching for the quadrature index.
func SeekIndex(distance, param, speed int64) Command {
	return Command{Kind: CommandSeekIndex, Distance: distance, Param: param, Speed: speed}
}

// HomingSequence is the ordered set of commands that returns the motor to its index.
func HomingSequence() []Command {
	return []Command{
		Stop(),
		SetMode(ModeIndexSearch),
		SeekIndex(HomeSeekDistance, HomeSeekParam, HomeSeekSpeed),
	}
}

// String renders the command in the driver wire format, terminator included.
// Unknown kinds render as the empty string.
func (c Command) String() string {
	letter := c.Kind.letter()
	if letter == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteByte('X')
	b.WriteString(strconv.Itoa(Axis))
	b.WriteByte(letter)

	switch c.Kind {
	case CommandMoveTo:
		b.WriteString(strconv.FormatInt(c.Position, 10))
	case CommandSetMode:
		b.WriteString(strconv.Itoa(c.Mode))
	case CommandSeekIndex:
		b.WriteString(strconv.FormatInt(c.Distance, 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(c.Param, 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(c.Speed, 10))
	}

	b.WriteByte(Terminator)
	return strings.TrimSpace(b.String())
}

// Bytes returns the wire encoding of the command.
func (c Command) Bytes() []byte {
	return []byte(c.String())
}

// ParseCommand decodes a single wire command such as "X1T580;".
// The terminator is required.
func ParseCommand(s string) (Command, error) {
	prefix := "X" + strconv.Itoa(Axis)
	if len(s) < len(prefix)+2 || !strings.HasPrefix(s, prefix) || s[len(s)-1] != Terminator {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
	}

	body := s[len(prefix)+1 : len(s)-1]
	switch s[len(prefix)] {
	case 'T':
		pos, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrInvalidCommand, s, err)
		}
		return MoveTo(pos), nil
	case 'S':
		if body != "" {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
		}
		return Stop(), nil
	case 'N':
		mode, err := strconv.Atoi(body)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %q: %v", ErrInvalidCommand, s, err)
		}
		return SetMode(mode), nil
	case 'I':
		parts := strings.Split(body, ",")
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
		}
		var vals [3]int64
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return Command{}, fmt.Errorf("%w: %q: %v", ErrInvalidCommand, s, err)
			}
			vals[i] = v
		}
		return SeekIndex(vals[0], vals[1], vals[2]), nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
	}
}

// SplitCommands splits a raw byte stream into terminated wire commands.
// Trailing bytes without a terminator are returned as rest.
func SplitCommands(stream string) (cmds []string, rest string) {
	for {
		i := strings.IndexByte(stream, Terminator)
		if i < 0 {
			return cmds, stream
		}
		cmds = append(cmds, stream[:i+1])
		stream = stream[i+1:]
	}
}
