// Package tasks implements the two-account list membership sync.
//
// # Pipeline
//
// [Syncer.Run] walks a fixed sequence of phases:
//
//  1. [FetchLists] : retrieve the lists owned by each account
//  2. [ExcludeFiltered] : drop lists named in the exclusion set and derive account identities
//  3. [MatchAndNegotiate] : pair lists by name ([MatchLists]) and offer to create missing ones ([Negotiator])
//  4. [SyncEachPair] : add to each side the public members only the other side has ([Differ])
//  5. [Summarize] and [NotifySummary] : report changed lists, optionally by direct message
//
// The merge is a union: members removed on one side are added back from the other. Protected members are
// counted but never propagated.
//
// # Progress Reporting
//
// Every phase reports through a [ProgressUpdate] channel. Sends use select with default so a slow reader
// never blocks the sync.
package tasks
