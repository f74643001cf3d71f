// Package models defines the core domain models for tanda groups.
//
// A tanda is a rotating-savings group: members contribute a fixed amount each
// month and the pooled value (a vehicle package) is delivered to one member per
// cycle, in the order given by the delivery schedule.
//
// # Ownership
//
// A Group exclusively owns its Members, Schedule, Transfers and Consensus
// requests. Nothing is shared across groups, so relationships are expressed
// with ID strings rather than pointers, and deleting a group deletes
// everything it owns.
//
// # Simulation models
//
// SimulationEvent, ScenarioParams, Caps and ScenarioResult describe the
// what-if simulator inputs and outputs. They never reference a persisted
// Group; the simulator works on a snapshot.
package models
