// Package scheduler runs the background processing loop.
//
// A bounded pool of workers polls the registry for pending media
// items. Claiming is delegated to the registry's atomic conditional
// update, so at most one worker ever processes a given item. Each
// claimed item is run through the transcoding engine and the outcome
// written back in a single registry update; only after that write
// commits is a superseded output directory deleted.
//
// Upload handlers call Notify to wake an idle worker immediately
// instead of waiting out the poll interval. The registry row is the
// durable record; the channel only removes latency, so a dropped
// notification costs one poll interval at worst.
package scheduler
