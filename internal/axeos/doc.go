// Package axeos is the transport for AxeOS (ESP-Miner) devices.
//
// Two endpoints are used:
//
//   - GET /api/system/info returns a JSON SystemInfo with electrical values in
//     device units (W, mV, mA). Client.GetInfo fetches it.
//   - /api/ws is a websocket on which the firmware pushes each console log
//     line as a text message, ESP-IDF color escapes included. Client.Stream
//     reads it until the context is cancelled.
//
// The package does no unit conversion and no retrying. Callers decide what a
// failed request means: the telemetry sampler surfaces it to observers and
// the log viewer ends its subscription.
package axeos
