// Package gnss holds the data types produced by GNSS receivers: position
// solutions, error estimates, dilution of precision and satellite visibility.
//
// Numeric fields that a receiver may not report default to Unknown (NaN)
// rather than zero, so "reported as 0" and "not reported" stay distinct.
package gnss
