// Package ingest imports text into the document library.
//
// An Importer turns Sources (a title, text content and optional tags) into
// documents. Preparation runs concurrently on a worker pool: word and
// character counts, tags and, when enabled, the most frequent content words
// captured into the document's in-context vocabulary with the sentence they
// first appear in. Documents are saved in input order once prepared.
package ingest
