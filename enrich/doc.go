// Package enrich fills in missing dictionary data for saved vocabulary.
//
// An Enricher walks the active vocabulary in batches, looks each word that
// has neither a definition nor a translation up through a
// dictionary.Definer, and saves the result through the manager. Lookups run
// on a bounded worker pool, transient failures are retried with exponential
// backoff, and progress is written to an io.Writer.
package enrich
