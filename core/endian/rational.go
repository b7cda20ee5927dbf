package endian

import (
	"fmt"
	"strings"
	"time"
)

// URational is an unsigned fraction. The denominator is kept as read; zero
// means "not defined" and is never normalised away.
type URational struct {
	Num uint32
	Den uint32
}

// Rational is a signed fraction with the same zero-denominator rule.
type Rational struct {
	Num int32
	Den int32
}

func (r URational) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }
func (r Rational) String() string  { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// Float returns the quotient, or false when the denominator is zero.
func (r URational) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

// Float returns the quotient, or false when the denominator is zero.
func (r Rational) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

// ExifDateLayout is the fixed "YYYY:MM:DD HH:MM:SS" layout of EXIF date tags.
const ExifDateLayout = "2006:01:02 15:04:05"

// ParseExifDate parses an EXIF date string. Trailing NULs and blanks are
// ignored. Sub-second and offset tags are separate in EXIF and are not folded in.
func ParseExifDate(s string) (time.Time, error) {
	s = strings.TrimRight(s, "\x00 ")
	return time.Parse(ExifDateLayout, s)
}

// FormatExifDate renders t in the EXIF layout.
func FormatExifDate(t time.Time) string {
	return t.Format(ExifDateLayout)
}
