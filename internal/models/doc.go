// Package models defines the core domain models for splitscan.
//
// # Models
//
//   - Receipt: a scanned or hand-entered bill with items, participants, and claims
//   - Item: one purchased line entry (name, unit price, quantity, claims)
//   - Participant: a person splitting the receipt, scoped to one receipt
//   - User: a registered account that owns receipts
//
// # Design Principles
//
//  1. Subtotal and Total on a Receipt are derived: they are recomputed from
//     items, tax, and tip on every write and never trusted from callers.
//  2. Relationships use ID strings instead of pointers to avoid circular
//     references; an item's ClaimedBy holds participant IDs.
//  3. Participants belong to a single receipt. There are no cross-receipt
//     groups; sharing a receipt shares its participant list.
//
// Claims deliberately do not divide an item's price among claimants: each
// claimant is charged the full item total. See calculator.ParticipantTotal.
package models
