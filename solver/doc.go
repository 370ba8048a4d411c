// Package solver implements a QCDCL (Quantified Conflict-Driven Clause and
// Term Learning) search engine for quantified Boolean formulas in prenex
// form, over clauses (CNF) or QCIR gate circuits flattened to CNF.
//
// The package is organized the way a single-translation-unit C++ QCDCL
// solver is: one package, many files, one file (or small family of files)
// per subsystem named in the design — variable store, constraint database,
// dependency manager, propagator, decision heuristics, learning engine,
// restart scheduler, and the driver tying them together. Subsystems
// communicate through narrow interfaces (notifyAssigned, notifyBacktrack,
// and friends) rather than through a god object; the driver owns the wiring.
package solver
