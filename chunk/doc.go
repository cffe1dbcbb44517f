// Package chunk splits cleaned document text into overlapping,
// bounded-length windows suitable for embedding.
//
// Window boundaries are measured in model token units, not characters,
// so a Chunker is built over a Tokenizer. For fixed input and
// parameters the produced windows are byte-identical across runs, which
// makes index rebuilds idempotent.
//
// The package also carries the clause-number annotator: a best-effort
// heuristic that pulls a dotted heading numeral ("4.2") out of chunk
// text so retrieval can filter on it later.
package chunk
