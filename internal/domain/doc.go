// Package domain contains the core entities of the vocabulary review engine:
// vocabulary items, the cards that schedule them per review modality, and the
// immutable review events recorded against those cards.
//
// Entities here are storage-agnostic. Status and card type are closed
// variants; their string forms exist only for persistence and transport.
package domain
