// Package telemetry polls a miner's system info endpoint on a fixed cadence
// and shares the latest normalized reading with every observer. Polling only
// runs while someone is watching; a late observer gets the cached reading
// immediately instead of waiting for the next tick.
package telemetry
