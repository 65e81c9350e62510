/*
Package storage provides the embedded persistence layer for snapshots,
alerts and commands.

The Store interface has one implementation, BoltStore, backed by a
single bbolt database file. Records are kept in per-kind buckets
(metrics, health, security, logs) plus buckets for alerts and commands,
all JSON-encoded.

Keys are zero-padded nanosecond timestamps suffixed with the record ID,
so bucket cursor order is chronological and Recent can walk backwards
from the newest entry without a secondary index.

Writers in the gateway treat this store as best-effort: a failed append
is logged and counted but never blocks a broadcast. Reads back the
other way (history endpoints, the performance analyzer) tolerate the
resulting gaps.

# Usage

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Append(types.RecordKindMetrics, snapshot)
	recent, err := store.Recent(types.RecordKindMetrics, 20)
*/
package storage
