// Package integration contains the Integration bounded context.
// This context tracks outbound dispatches to external automation services.
//
// Key concepts:
//   - Channel: a named external target (n8n, Notion)
//   - Action: one dispatch operation on a channel, tracked independently
//   - StatusBoard: immutable per-channel and per-action status snapshot
//   - Gateways: ports for the webhook, executions and Notion clients
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
