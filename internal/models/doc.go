// Package models defines domain entities and persistence interfaces for the list sync service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs describing social network data fetched during a run
//   - [User] : The owner of a list, used to label accounts and address direct messages
//   - [List] : A curated follow-list; matched across accounts by its name, never its ID
//   - [Member] : A user within a list, with the protected flag captured at fetch time
//   - [ListPair] : Two lists (account 1 side, account 2 side) representing the same logical list
//
// 2. Persistent Entities: Database-backed records of completed runs (audit only)
//   - [SyncRun] : One invocation of the sync with its summary and outcome
//   - [ListOutcome] : Per-list counts recorded for a run
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, and validation.
// The [Repository] interface defines standard data access operations.
package models
