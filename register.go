package vsensor

import "strings"

// Datatype of a register value as documented in the V-Sensor manual.
type Datatype string

const (
	U16 Datatype = "u16"     // unsigned 16-bit integer
	S16 Datatype = "s16"     // signed 16-bit integer
	F32 Datatype = "float32" // IEEE-754 float spread over two registers
)

// RegisterSpec describes one entry of the V-Sensor register map.
type RegisterSpec struct {
	Address     uint16 // the 1-based register address as printed in the manual
	Name        string // symbolic name used in config files and CLI tools
	Datatype    Datatype
	Access      string // R | W | RW
	Description string
}

// Quantity returns the number of 16-bit registers the entry spans.
func (r RegisterSpec) Quantity() uint16 {
	if r.Datatype == F32 {
		return 2
	}
	return 1
}

// Writable reports whether the register accepts writes.
func (r RegisterSpec) Writable() bool {
	return strings.Contains(r.Access, "W")
}

// ZeroBased converts the documented 1-based address to the 0-based address
// used on the wire.
func (r RegisterSpec) ZeroBased() uint16 {
	return r.Address - 1
}

// Registers lists every documented register of the V-Sensor.
var Registers = []RegisterSpec{
	{138, "low_alarm_threshold_deprecated", U16, "RW", "Low Alarm Threshold (deprecated, use 216/217)"},
	{139, "high_alarm_threshold_deprecated", U16, "RW", "High Alarm Threshold (deprecated, use 218/219)"},
	{140, "alarm_timer_1", U16, "RW", "Alarm Timer 1 (s or 0.1 h)"},
	{141, "alarm1_status", U16, "R", "Alarm 1 Status (0=OK, 1=Low Alarm)"},
	{142, "alarm2_status", U16, "R", "Alarm 2 Status (0=OK, 1=High Alarm)"},
	{143, "alarm_timer_2", U16, "RW", "Alarm Timer 2"},
	{144, "alarm_bits", U16, "RW", "Alarm Bits: Bit0 Low, Bit1 High, Bit2 Common, Bit3 Unmuted, Bit4 Healthy"},
	{145, "buzzer_status", U16, "RW", "Buzzer Status (1=Unmuted Alarm present)"},
	{146, "heartbeat", U16, "R", "Heartbeat (seconds tick, rolls over at 65535)"},
	{147, "alarm_mode0_relay", U16, "RW", "Alarm Mode 0 Relay (write 1 = energize)"},
	{148, "alarm_mode0_buzzer", U16, "RW", "Alarm Mode 0 Buzzer (write 1 = ON)"},
	{149, "display_value", F32, "R", "Display Value (as shown on display)"},
	{151, "pascals", F32, "R", "Pascals (measured pressure)"},
	{153, "setpoint", F32, "RW", "Control/PID Setpoint"},
	{155, "pid_output", S16, "R", "PID Output (-4095...+4095)"},
	{156, "mode", U16, "RW", "Mode: 0=Disabled, 1=Auto, 2=Hand, 3=Off, 4=Hand@current"},
	{158, "pressure", S16, "R", "Pressure (int, 0.1 Pa <2500Pa, else 1 Pa)"},
	{164, "text_display", U16, "RW", "Text Display (LED version only, 0=Normal, 1=Error, 2=Fault, 3=Off, 4=Stop; +16 = alternating)"},
	{165, "hand_setpoint", F32, "RW", "Hand Setpoint (%)"},
	{167, "control_output", F32, "R", "Control Output (%)"},
	{216, "low_alarm_threshold", F32, "RW", "Low Alarm Threshold (Display Units)"},
	{218, "high_alarm_threshold", F32, "RW", "High Alarm Threshold (Display Units)"},
}

var (
	byAddress = make(map[uint16]RegisterSpec)
	byName    = make(map[string]RegisterSpec)
)

func init() {
	for _, r := range Registers {
		byAddress[r.Address] = r
		byName[r.Name] = r
	}
}

// RegisterByName looks up a register by its symbolic name.
func RegisterByName(name string) (RegisterSpec, bool) {
	r, ok := byName[name]
	return r, ok
}

// RegisterByAddress looks up a register by its 1-based address.
func RegisterByAddress(address uint16) (RegisterSpec, bool) {
	r, ok := byAddress[address]
	return r, ok
}
