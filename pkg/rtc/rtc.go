// Package rtc models the register file of the battery backed clock the
// monitor reads the date and time from. A register number is latched
// through the command port and the value comes back on the data port.
package rtc

import "time"

// Register numbers accepted on the command port.
const (
	RegSeconds = iota
	RegMinutes
	RegHours
	RegDay
	RegMonth
	RegYear
	RegWeekday
)

// Clock is the clock chip. It is read only; the host wall clock is the
// time source.
type Clock struct {
	// Now supplies the current time. Tests swap it for a fixed one.
	Now func() time.Time

	reg uint8
}

// New returns a Clock backed by the system wall clock.
func New() *Clock {
	return &Clock{Now: time.Now}
}

// Select latches the register number subsequent Data reads return.
func (c *Clock) Select(reg uint8) {
	c.reg = reg
}

// Selected returns the latched register number.
func (c *Clock) Selected() uint8 {
	return c.reg
}

// Data returns the selected register. Years are two digit, the month
// starts at 1 and the weekday at 0 for Sunday. Registers the chip does
// not have read as 0.
func (c *Clock) Data() uint8 {
	t := c.Now()
	switch c.reg {
	case RegSeconds:
		return uint8(t.Second())
	case RegMinutes:
		return uint8(t.Minute())
	case RegHours:
		return uint8(t.Hour())
	case RegDay:
		return uint8(t.Day())
	case RegMonth:
		return uint8(t.Month())
	case RegYear:
		return uint8(t.Year() % 100)
	case RegWeekday:
		return uint8(t.Weekday())
	}
	return 0
}
