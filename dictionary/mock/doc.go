// Package mock provides a test double for dictionary.Definer.
package mock
