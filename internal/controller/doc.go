// Package controller implements the command-orchestration core of the
// RDM gateway: it turns one logical operation ("show me device info for
// UID X on universe N") into a correctly sequenced chain of RDM
// exchanges, tracks per-universe label resolution, and maps the
// protocol's multi-way response outcome into uniform results.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	│                                                             │
//	│  ┌───────────────┐  ┌────────────────┐  ┌───────────────┐  │
//	│  │ Section       │  │ Discovery      │  │ Resolver      │  │
//	│  │ Registry      │  │ (discovery.go) │  │ (resolver.go) │  │
//	│  │ (registry.go) │  │                │  │               │  │
//	│  │ • id → chains │  │ • 2-phase scan │  │ • label cache │  │
//	│  │ • Dispatch    │  │ • fixed order  │  │ • FIFO queue  │  │
//	│  │ • priorities  │  │ • sensor fanout│  │ • single-flight│ │
//	│  └───────┬───────┘  └───────┬────────┘  └───────┬───────┘  │
//	└──────────│──────────────────│───────────────────│──────────┘
//	           ▼                  ▼                   ▼
//	                     Transport (olad bridge)
//
// # Chains
//
// Each section binds a read chain and optionally a write chain. Chains
// run as plain sequential code in the caller's goroutine; each step
// suspends on the asynchronous Transport completion. Many chains may be
// in flight concurrently, each owning its accumulated state. There is
// no cancellation: a started chain always runs to a classified outcome
// (the transport's own timeout bounds every step).
//
// Step failures follow a per-chain policy: a transport-level failure
// always aborts the chain, while a rejection is tolerated on the steps
// whose data is optional (model description, sensor definition, the
// supported-parameter scan) and fatal on the rest.
//
// # Resolution
//
// The Resolver keeps the per-universe UID → label cache fresh in the
// background. It is fed by UID membership reports, issues at most one
// label request per universe at a time, and swallows fetch failures:
// resolution is best-effort, not request/response.
package controller
