// Package api provides the Messari data API client.
//
// REST endpoint:
//   - Production: https://data.messari.io
//
// Every response is wrapped in a {"status": ..., "data": ...} envelope.
// Requests carry the x-messari-api-key header when a key is configured;
// most read endpoints also work without one at a lower rate limit.
package api
