package r3

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRead substitutes a read Command's placeholders and prefixes the
// mecha/task-slot pair the controller expects at the start of every line,
// e.g. "1;1;VAL2". j defaults to 0 for scalar reads and is set to the
// 1-based array index for array element reads.
func FormatRead(cmd Command, j int) (outgoing, match string) {
	body := strings.NewReplacer(
		"{i}", strconv.Itoa(cmd.ID),
		"{i16}", strconv.Itoa(16*(cmd.ID-1)),
		"{j}", strconv.Itoa(j),
	).Replace(cmd.Command)
	outgoing = fmt.Sprintf("%d;%d;%s", cmd.MechaNo, cmd.TaskSlotNo, body)

	match = strings.NewReplacer(
		"{i}", strconv.Itoa(cmd.ID),
		"{i1}", strconv.Itoa(cmd.ID-1),
		"{i2}", strconv.Itoa(2*(cmd.ID-1)),
		"{i3}", strconv.Itoa(3*(cmd.ID-1)),
	).Replace(cmd.Match)
	return outgoing, match
}

// FormatWrite substitutes a write Command's placeholders with its id and
// the value to send.
func FormatWrite(cmd Command, value string) string {
	body := strings.NewReplacer(
		"{i}", strconv.Itoa(cmd.ID),
		"{i16}", strconv.Itoa(16*(cmd.ID-1)),
		"{value}", value,
	).Replace(cmd.Command)
	return fmt.Sprintf("%d;%d;%s", cmd.MechaNo, cmd.TaskSlotNo, body)
}

// FormatName substitutes a schema name template's {i}, {first16} and
// {last16} placeholders for a 1-based folder-child id.
func FormatName(name string, id int) string {
	return strings.NewReplacer(
		"{i}", strconv.Itoa(id),
		"{first16}", strconv.Itoa((id-1)*16),
		"{last16}", strconv.Itoa(id*16-1),
	).Replace(name)
}
