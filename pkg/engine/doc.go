// Package engine implements the adaptive content-layout engine.
//
// The engine renders a set of content items into a container of finite
// capacity by solving a continuous resource-allocation problem: each item
// carries a composite value (how much it deserves space) and a composite
// weight (how much space it costs at full fidelity), and the solver decides
// per item how much of its full weight to grant so that total allocated
// weight stays within capacity while total value is maximized.
//
// # Architecture
//
// A solve runs through four stages:
//
//  1. Compose: raw value/weight signals are folded into composite scalars
//     on every registration or update (see SignalWeights).
//  2. Allocate: the optional items are handed to a fractional-knapsack
//     solver that grants each a continuous inclusion fraction.
//  3. Enforce: an ordered pipeline of constraint passes adjusts the draft
//     decisions (structural reservation, minimum-visible promotion,
//     cognitive-load ceiling).
//  4. Finalize: forced render modes from overrides are applied and
//     subscribers are notified.
//
// # Usage
//
// Register items and solve:
//
//	eng := engine.New(engine.Config{DocumentID: "doc-1"})
//	eng.RegisterItem(item, values, weights)
//	result := eng.Solve(engine.ContainerConstraints{Capacity: 800})
//	for _, d := range result.Decisions {
//	    fmt.Println(d.BlockID, d.Mode, d.AllocatedWeight)
//	}
//
// Personalized solves adjust capacity and values per viewer before
// delegating to the same pipeline:
//
//	result := eng.PersonalizedSolve(constraints, viewerCtx)
//
// The engine is synchronous and single-writer: Solve performs no I/O,
// recomputes the full decision set on every call, and may be invoked from
// timer callbacks as long as registrations are not concurrent. Use
// Scheduler to debounce bursts of triggering events.
package engine
