// Package builtin provides the scripts registered with the gateway at startup.
//
// The pack includes a streaming echo script plus two market-analysis scripts
// (price summary and SMA crossover strategy) that run on deterministic
// synthetic price series, so they exercise output framing, parameters,
// results, and report files without any external data dependency.
//
// Register everything with:
//
//	builtin.RegisterAll(registry)
package builtin
