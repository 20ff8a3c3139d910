package db

import "time"

// HistoryRow is one applied-migration record as stored in the history table.
type HistoryRow struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ProductVersion string    `json:"product_version"`
	AppliedAt      time.Time `json:"applied_at"`
}

// historyTable is where applied migrations are recorded. Rows are keyed by
// (scope, id) so one database can carry several independent histories.
const historyTable = "prog_migrations"

// lockWaitSeconds bounds engine-side lock waits where the engine takes an
// explicit wait argument (MySQL GET_LOCK).
const lockWaitSeconds = 30

type historyRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanHistory(rows historyRows) ([]HistoryRow, error) {
	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		if err := rows.Scan(&r.ID, &r.Name, &r.ProductVersion, &r.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
