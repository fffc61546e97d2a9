// Package common keeps enumerations shared by configuration and conversion
// code, so packages below config do not have to depend on it.
package common

// Specification of what to do with cue timing when document does not declare
// frame rate.
// ENUM(fail, milliseconds)
type MissingFrameRate int

// Fallback reports whether frame field could be used without frame rate.
func (m MissingFrameRate) Fallback() bool {
	return m == MissingFrameRateMilliseconds
}
