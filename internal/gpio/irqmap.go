package gpio

// InterruptMap resolves a pin to the interrupt line that reports its edges.
type InterruptMap interface {
	// Line returns the interrupt line for pin, or false if the pin cannot
	// generate an edge interrupt.
	Line(pin Pin) (int, bool)
}

// LineTable is an explicit pin-to-line table. Pins not listed have no
// interrupt.
type LineTable map[Pin]int

// Line implements InterruptMap.
func (t LineTable) Line(pin Pin) (int, bool) {
	line, ok := t[pin]
	return line, ok
}

// LinearMap gives every pin below its value an interrupt line of the same
// number. The Linux character device reports edges on any line of a chip.
type LinearMap int

// Line implements InterruptMap.
func (n LinearMap) Line(pin Pin) (int, bool) {
	if int64(pin) >= int64(n) {
		return 0, false
	}
	return int(pin), true
}

// ATmega2560 maps Arduino Mega pin numbers to attachInterrupt numbers.
// The stock Arduino core omits PE6/PE7 (pins 79 and 80).
//
//	Port/Pin   Arduino pin   INT#   Arduino INT#
//	PD0 / 43   21            0      2
//	PD1 / 44   20            1      3
//	PD2 / 45   19            2      4
//	PD3 / 46   18            3      5
//	PE4 / 6     2            4      0
//	PE5 / 7     3            5      1
//	PE6 / 8    79            6      6
//	PE7 / 9    80            7      7
var ATmega2560 = LineTable{
	2:  0,
	3:  1,
	21: 2,
	20: 3,
	19: 4,
	18: 5,
	79: 6,
	80: 7,
}
