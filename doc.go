// Package akasha is a GraphRAG engine: it ingests unstructured text into a
// property graph of entities, relationships, and source documents via LLM
// extraction and vector embeddings, then answers questions by combining
// vector search with bounded graph traversal and grounded LLM generation.
//
// An Akasha instance is constructed from a Config (see engine/config) and
// exposes three operations: Learn/LearnBatch to ingest text, Ask to
// retrieve and answer, and a scope-enforced CRUD surface over entities,
// relationships, and documents.
package akasha
