// Package workers provides worker pool sizing based on available CPUs.
package workers
