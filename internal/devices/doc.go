// Package devices classifies HTTP clients into coarse capability
// classes and maps each class to delivery parameters.
//
// Classification is intentionally a single mapping function: an
// explicit X-Device-Class header or device query parameter wins, and
// only in their absence does a conservative User-Agent check apply.
// Everything downstream works from the Class enum, never from raw
// User-Agent strings.
package devices
