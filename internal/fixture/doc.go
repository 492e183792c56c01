// Package fixture parses and replays the engine benchmark/test fixture
// format from spec.md §6 ("Test/benchmark fixture format (engine harness)"):
// a decimal operation count, a hex-encoded initial document, one insert/
// delete operation per line, and a hex-encoded expected final document.
//
// Replay checks two independent implementations against the same fixture:
// a reference byte-slice buffer (ground truth for "what the operations
// mean") and the production piecetree.Tree (the implementation under
// test). Agreement between the two, and with the fixture's expected
// document, is the correctness property spec.md §8 calls out explicitly:
// "the benchmark harness, given any generated fixture, must agree with a
// reference piece-table replay byte-for-byte."
package fixture
